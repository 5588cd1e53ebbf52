package catalog

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/snapetech/multiview/internal/httpclient"
	"github.com/snapetech/multiview/internal/safeurl"
)

const maxLineSize = 1 << 20 // 1 MiB per line

// selfName is filtered out of parsed channel lists to avoid a channel
// feeding back into its own broadcast.
const selfName = "Multiview"

// Load fetches and parses source (an http(s) URL or a local file path),
// replacing the catalog contents atomically. On transport failure the
// prior catalog is left untouched and an empty result is never swapped in.
func (c *Catalog) Load(source string, client *http.Client) error {
	channels, err := fetchAndParse(source, client)
	if err != nil {
		return err
	}
	c.Replace(channels)
	return nil
}

func fetchAndParse(source string, client *http.Client) ([]Channel, error) {
	var r io.ReadCloser
	var err error
	if safeurl.IsHTTPOrHTTPS(source) {
		r, err = fetchM3U(source, client)
	} else {
		r, err = os.Open(source)
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return parseM3U(r)
}

func fetchM3U(m3uURL string, client *http.Client) (io.ReadCloser, error) {
	if client == nil {
		client = httpclient.Default()
	}
	req, err := http.NewRequest(http.MethodGet, m3uURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "multiview/1.0")
	resp, err := httpclient.DoWithRetry(context.Background(), client, req, httpclient.DefaultRetryPolicy)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errStatusCode(resp.StatusCode)
	}
	return resp.Body, nil
}

// parseM3U recognizes "#EXTINF:<duration>[ key="value"...][,<display>]"
// lines followed by a non-comment URL line. Parse errors on individual
// entries are skipped silently.
func parseM3U(r io.Reader) ([]Channel, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, maxLineSize)

	var channels []Channel
	var pendingExtinf string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#EXTINF:") {
			pendingExtinf = line
			continue
		}
		if pendingExtinf == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ch := channelFromEntry(pendingExtinf, line)
		pendingExtinf = ""
		if ch.DisplayName == selfName {
			continue
		}
		channels = append(channels, ch)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return channels, nil
}

func channelFromEntry(extinf, streamURL string) Channel {
	display := extinf
	if i := strings.Index(extinf, ","); i >= 0 {
		display = strings.TrimSpace(extinf[i+1:])
	}
	id := attr(extinf, "tvg-id")
	if id == "" {
		id = uuid.NewString()
	}
	return Channel{
		ID:            id,
		DisplayName:   display,
		LogoURL:       attr(extinf, "tvg-logo"),
		StreamURL:     streamURL,
		Group:         attr(extinf, "group-title"),
		ChannelNumber: attr(extinf, "tvg-chno"),
	}
}

// attr extracts key="value" from an #EXTINF line.
func attr(extinf, key string) string {
	prefix := key + `="`
	i := strings.Index(extinf, prefix)
	if i < 0 {
		return ""
	}
	i += len(prefix)
	j := strings.Index(extinf[i:], `"`)
	if j < 0 {
		return ""
	}
	return extinf[i : i+j]
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return "unexpected status: " + strconv.Itoa(int(e))
}
