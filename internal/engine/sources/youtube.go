// Package sources fetches caption tracks for the transcript extractor.
package sources

// YouTube implementation is split across files by responsibility:
//   videoid.go            locator → video id parsing
//   youtube_innertube.go  Innertube API types, constants, low-level HTTP primitives
//   youtube_transcript.go caption fetching (watch page scrape, engagement panel,
//                         ANDROID player fallback) returning ordered fragments
