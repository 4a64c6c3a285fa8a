package utils

import (
	"math/rand/v2"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	adjectives = []string{
		"brave", "calm", "clever", "curious", "eager", "gentle", "happy", "jolly",
		"lucky", "mighty", "nimble", "quiet", "sleepy", "swift", "witty", "zesty",
	}
	creatures = []string{
		"axolotl", "badger", "capybara", "dolphin", "falcon", "gecko", "heron", "koala",
		"lynx", "marmot", "narwhal", "otter", "panda", "quokka", "tapir", "walrus",
	}
)

// RandomName 產生一個顯示名稱，例如 "Witty Otter"
func RandomName() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	creature := creatures[rand.IntN(len(creatures))]
	// Caser 不可跨 goroutine 共用
	return cases.Title(language.English).String(adj + " " + creature)
}
