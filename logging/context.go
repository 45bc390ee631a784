package logging

import (
	"context"

	"go.viam.com/utils"
)

type debugModeKey struct{}

// EnableDebugMode marks ctx so that C* logging methods emit debug entries whatever the logger's
// level. The tag names the traced operation; an empty tag is replaced by a random one.
func EnableDebugMode(ctx context.Context, tag string) context.Context {
	if tag == "" {
		tag = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, debugModeKey{}, tag)
}

// IsDebugMode reports whether ctx was marked by EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return DebugTag(ctx) != ""
}

// DebugTag returns the tag ctx was marked with, or "".
func DebugTag(ctx context.Context) string {
	tag, _ := ctx.Value(debugModeKey{}).(string)
	return tag
}
