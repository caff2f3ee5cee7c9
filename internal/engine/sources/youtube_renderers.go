package sources

import (
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_ytmeta/internal/engine"
)

const ytWatchURL = "https://www.youtube.com/watch?v="

// NewDispatch returns the renderer vocabulary shared by search and playlist pages.
func NewDispatch() *engine.Dispatch {
	d := engine.NewDispatch()
	d.RegisterItem("videoRenderer", videoItem)
	d.RegisterItem("playlistVideoRenderer", playlistVideoItem)
	d.RegisterItem("playlistPanelVideoRenderer", playlistPanelItem)
	d.RegisterContinuation("continuationItemRenderer", continuationCommandToken)
	d.RegisterContinuation("nextContinuationData", nextContinuationToken)
	d.RegisterHeader("playlistHeaderRenderer", playlistHeader)
	d.RegisterHeader("pageHeaderRenderer", pageHeader)
	return d
}

// videoItem reads a search result.
func videoItem(n engine.Node) engine.Item {
	it := baseItem(n)
	it.Channel = optText(engine.Lookup(n, "ownerText"))
	it.ChannelURL = channelURL(engine.Lookup(n, "ownerText"))
	it.ViewCount = optCount(engine.Lookup(n, "viewCountText"))
	it.Description = optText(engine.Lookup(n, "detailedMetadataSnippets", 0, "snippetText"))
	if it.Description == nil {
		it.Description = optText(engine.Lookup(n, "descriptionSnippet"))
	}
	return it
}

// playlistVideoItem reads a track on a /playlist page or a /browse continuation.
func playlistVideoItem(n engine.Node) engine.Item {
	it := baseItem(n)
	it.Channel = optText(engine.Lookup(n, "shortBylineText"))
	it.ChannelURL = channelURL(engine.Lookup(n, "shortBylineText"))
	if secs, ok := engine.Int(engine.Lookup(n, "lengthSeconds")); ok {
		v := int(secs)
		it.DurationSeconds = &v
	}
	if idx, ok := engine.Text(engine.Lookup(n, "index")); ok {
		if v, err := strconv.Atoi(idx); err == nil {
			it.Position = &v
		}
	}
	if it.ViewCount == nil {
		it.ViewCount = optCount(engine.Lookup(n, "videoInfo", "runs", 0, "text"))
	}
	return it
}

// playlistPanelItem reads a track in the watch-page playlist panel.
func playlistPanelItem(n engine.Node) engine.Item {
	it := baseItem(n)
	it.Channel = optText(engine.Lookup(n, "longBylineText"))
	it.ChannelURL = channelURL(engine.Lookup(n, "longBylineText"))
	if idx, ok := engine.Text(engine.Lookup(n, "indexText")); ok {
		if v, err := strconv.Atoi(idx); err == nil {
			it.Position = &v
		}
	}
	return it
}

// baseItem reads the fields every video renderer variant shares.
func baseItem(n engine.Node) engine.Item {
	id, _ := engine.String(engine.Lookup(n, "videoId"))
	it := engine.Item{
		ID:        id,
		Title:     optText(engine.Lookup(n, "title")),
		Published: optText(engine.Lookup(n, "publishedTimeText")),
		Duration:  optText(engine.Lookup(n, "lengthText")),
	}
	if id != "" {
		u := ytWatchURL + id
		it.URL = &u
	}
	if it.Duration != nil {
		if secs, ok := engine.ParseClock(*it.Duration); ok {
			it.DurationSeconds = &secs
		}
	}
	if it.ViewCount == nil {
		it.ViewCount = optCount(engine.Lookup(n, "viewCountText"))
	}
	return it
}

func continuationCommandToken(n engine.Node) (string, bool) {
	return engine.String(engine.Lookup(n, "continuationEndpoint", "continuationCommand", "token"))
}

func nextContinuationToken(n engine.Node) (string, bool) {
	return engine.String(engine.Lookup(n, "continuation"))
}

func playlistHeader(n engine.Node) engine.Header {
	h := engine.Header{Title: optText(engine.Lookup(n, "title"))}
	for _, path := range [][]any{{"numVideosText"}, {"stats", 0}} {
		if c := optCount(engine.Lookup(n, path...)); c != nil {
			v := int(*c)
			h.Count = &v
			break
		}
	}
	return h
}

func pageHeader(n engine.Node) engine.Header {
	return engine.Header{Title: optText(engine.Lookup(n, "pageTitle"))}
}

// channelURL reads the owner link from a byline's first run.
func channelURL(byline engine.Node) *string {
	ep := engine.Lookup(byline, "runs", 0, "navigationEndpoint", "browseEndpoint")
	if base, ok := engine.String(engine.Lookup(ep, "canonicalBaseUrl")); ok && strings.HasPrefix(base, "/") {
		u := "https://www.youtube.com" + base
		return &u
	}
	if id, ok := engine.String(engine.Lookup(ep, "browseId")); ok {
		u := "https://www.youtube.com/channel/" + id
		return &u
	}
	return nil
}

func optText(n engine.Node) *string {
	s, ok := engine.Text(n)
	if !ok {
		return nil
	}
	return &s
}

func optCount(n engine.Node) *int64 {
	s, ok := engine.Text(n)
	if !ok {
		return nil
	}
	c, ok := engine.ParseCount(s)
	if !ok {
		return nil
	}
	return &c
}
