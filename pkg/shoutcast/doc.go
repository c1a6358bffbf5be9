// Package shoutcast opens ICY/Shoutcast audio streams for sampling.
//
// It is a fork of github.com/romantomjak/shoutcast, cut down for inspection:
//   - Playlist resolution: .pls and .m3u URLs are resolved to the actual stream URL
//   - Correct metadata stripping: ICY metadata blocks are read and skipped so only audio bytes are returned
//   - Plain HTTP audio without icy-metaint is passed through unchanged
package shoutcast
