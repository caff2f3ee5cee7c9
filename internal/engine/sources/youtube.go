package sources

// YouTube implementation is split across files by responsibility:
//   youtube_renderers.go  renderer vocabulary and per-variant field extractors
//   youtube_innertube.go  Innertube WEB context and /browse continuation payloads
//   youtube_search.go     keyword search source (single page)
//   youtube_playlist.go   playlist source (initial page + continuations)
//   service.go            cache-coordinated search and playlist resolution
