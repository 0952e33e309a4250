package lexicon

import "github.com/seren-labs/serenade/internal/core/domain"

// keywords holds the match lexicon per category. Phrases are matched after
// input cleaning (punctuation stripped, lowercased), so entries contain no
// punctuation. A whole-word hit scores 2, a substring hit 1.
var keywords = map[domain.Category][]string{
	domain.Admiration:     {"admire", "impressed", "in awe", "look up to", "respect"},
	domain.Amusement:      {"amused", "funny", "laughing", "giggly", "silly"},
	domain.Anger:          {"angry", "furious", "rage", "mad at", "livid", "seething"},
	domain.Annoyance:      {"annoyed", "irritated", "irritable", "fed up", "bothered", "aggravated"},
	domain.Approval:       {"approve", "agree", "sounds good", "fine with"},
	domain.Caring:         {"caring", "warm inside", "tender", "affection", "gentle"},
	domain.Confusion:      {"confused", "lost", "dont understand", "mixed up", "foggy", "disoriented"},
	domain.Curiosity:      {"curious", "wondering", "intrigued", "interested"},
	domain.Desire:         {"craving", "longing", "yearning", "wish i", "want so badly"},
	domain.Disappointment: {"disappointed", "let down", "didnt work out", "expected more"},
	domain.Disapproval:    {"disapprove", "dont like", "object", "wrong of"},
	domain.Disgust:        {"disgusted", "gross", "revolted", "sickened"},
	domain.Embarrassment:  {"embarrassed", "ashamed", "humiliated", "awkward"},
	domain.Excitement:     {"excited", "thrilled", "pumped", "wired", "hyper", "cant wind down", "too energized"},
	domain.Fear:           {"afraid", "scared", "terrified", "frightened", "dread", "panicking", "panic"},
	domain.Gratitude:      {"grateful", "thankful", "appreciate"},
	domain.Grief:          {"grieving", "mourning", "loss of", "passed away", "heartbroken"},
	domain.Joy:            {"joyful", "happy", "delighted", "cheerful", "content"},
	domain.Love:           {"love", "adore", "in love", "cherish"},
	domain.Nervousness:    {"anxious", "anxiety", "nervous", "worried", "uneasy", "on edge", "tense", "cant sleep", "insomnia", "sleepless", "racing thoughts", "restless", "overthinking", "mind wont stop", "heart racing"},
	domain.Optimism:       {"optimistic", "hopeful", "looking forward", "things will improve"},
	domain.Pride:          {"proud", "accomplished", "achieved"},
	domain.Realization:    {"realized", "it hit me", "dawned on me", "now i see"},
	domain.Relief:         {"relieved", "weight off", "finally over", "at ease"},
	domain.Remorse:        {"sorry", "regret", "guilty", "my fault", "shouldnt have"},
	domain.Sadness:        {"sad", "down", "depressed", "crying", "miserable", "empty", "drained", "exhausted", "worn out", "tired", "fatigued", "no energy", "burned out"},
	domain.Surprise:       {"surprised", "shocked", "startled", "didnt expect", "out of nowhere"},
}
