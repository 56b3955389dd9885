package web

import "embed"

// StaticFS holds the embedded panel script and stylesheet.
//
//go:embed static/*
var StaticFS embed.FS
