package etc

// Version is the application version, injected at build time via ldflags.
var Version = "2023.05"

// ProductName is the name reported to Mastodon API clients.
const ProductName = "Friendica"

// MastodonCompatVersion is the Mastodon API version this server claims to speak.
const MastodonCompatVersion = "2.8.0"
