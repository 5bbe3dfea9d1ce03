package logctx

import (
	"context"
	"tailpost/internal/global"
)

// Returns a child context carrying the tag list plus one new tag.
// The parent list is never mutated.
func AppendCtxTag(ctx context.Context, newTag string) (newCtx context.Context) {
	tags := append(GetTagList(ctx), newTag)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Returns a child context with the newest tag dropped.
// The parent list is never mutated.
func RemoveLastCtxTag(ctx context.Context) (newCtx context.Context) {
	tags := GetTagList(ctx)

	if len(tags) > 0 {
		tags = tags[:len(tags)-1]
	}

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Replaces the whole tag list with the given one.
// The list is copied so later caller writes do not leak in.
func OverwriteCtxTag(ctx context.Context, newList []string) (newCtx context.Context) {
	tags := append([]string(nil), newList...)

	newCtx = context.WithValue(ctx, global.LogTagsKey, tags)
	return
}

// Copies the tag lineage out of the context, empty when untagged.
// Callers receive their own copy, the stored list stays immutable.
func GetTagList(ctx context.Context) (tags []string) {
	stored, validAssert := ctx.Value(global.LogTagsKey).([]string)
	if !validAssert {
		tags = []string{}
		return
	}

	tags = append([]string(nil), stored...)
	return
}
