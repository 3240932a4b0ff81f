package feed

import (
	"crypto/sha256"
	"encoding/hex"
)

// Item is a single article pulled from a feed. Field names match the
// cache snapshot and brief JSON layouts.
type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary"`
	Published string `json:"published"` // raw date string as the feed provided it
	Source    string `json:"source"`
	Category  string `json:"category"`
	Hash      string `json:"hash"`
	RankScore int    `json:"rank_score"`
}

// ItemHash returns the dedup identity of an article: a hex digest over
// title and link concatenated. Two items collide exactly when both
// fields are equal.
func ItemHash(title, link string) string {
	sum := sha256.Sum256([]byte(title + link))
	return hex.EncodeToString(sum[:])
}
