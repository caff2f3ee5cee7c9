package sources

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
)

// YouTube Innertube: WEB client context for continuation requests.

const (
	ytBrowsePath    = "/youtubei/v1/browse?prettyPrint=false"
	ytWebVersion    = "2.20250222.10.00"
	ytVisitorLength = 11
)

type ytWebClientCtx struct {
	ClientName    string `json:"clientName"`
	ClientVersion string `json:"clientVersion"`
	VisitorData   string `json:"visitorData,omitempty"`
	Hl            string `json:"hl,omitempty"`
	Gl            string `json:"gl,omitempty"`
}

type ytWebUser struct {
	EnableSafetyMode bool `json:"enableSafetyMode"`
}

type ytWebReqCtx struct {
	UseSsl bool `json:"useSsl"`
}

type ytWebContext struct {
	Client  ytWebClientCtx `json:"client"`
	User    ytWebUser      `json:"user"`
	Request ytWebReqCtx    `json:"request"`
}

type ytBrowseReq struct {
	Context      ytWebContext `json:"context"`
	Continuation string       `json:"continuation"`
}

// generateVisitorData creates a random visitor ID for Innertube requests.
func generateVisitorData() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	b := make([]byte, ytVisitorLength)
	for i := range b {
		b[i] = chars[rand.IntN(len(chars))] //nolint:gosec // non-cryptographic use
	}
	return string(b)
}

func newWebContext(visitorData string) ytWebContext {
	return ytWebContext{
		Client: ytWebClientCtx{
			ClientName:    "WEB",
			ClientVersion: ytWebVersion,
			VisitorData:   visitorData,
			Hl:            "en",
			Gl:            "US",
		},
		Request: ytWebReqCtx{UseSsl: true},
	}
}

// browseBody encodes a /browse continuation payload.
func browseBody(token, visitorData string) []byte {
	data, err := json.Marshal(ytBrowseReq{
		Context:      newWebContext(visitorData),
		Continuation: token,
	})
	if err != nil {
		// Only strings and bools: cannot fail.
		panic(err)
	}
	return data
}

func browseURL(base string) string {
	return strings.TrimRight(base, "/") + ytBrowsePath
}
