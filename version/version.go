package version

// Version is the current mmdu release.
const Version = "1.0.0"
