package blog

import "embed"

// EmbeddedAssets contains the scripts shipped with the engine:
// subscribe.js
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

const subscribeScript = "embedded/subscribe.js"
