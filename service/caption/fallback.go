package caption

import (
	"strings"

	"github.com/pkg/errors"
)

var errEmptyCompletion = errors.New("empty completion")

// Canned pool used whenever the model path is unavailable. Keyed entries win
// on a simple keyword match against the request context; otherwise a random
// entry is used.
type cannedEntry struct {
	keywords []string // matched against location/mood/timeOfDay, lowercased
	caption  string
	hashtags []string
}

var cannedPool = []cannedEntry{
	{
		keywords: []string{"beach", "sea", "ocean", "coast"},
		caption:  "Salt in the air, sand in my heart",
		hashtags: []string{"#beachlife", "#oceanview", "#sunkissed", "#waves"},
	},
	{
		keywords: []string{"mountain", "hike", "trail", "peak"},
		caption:  "The best views come after the hardest climbs",
		hashtags: []string{"#mountains", "#hiking", "#trailtime", "#summit"},
	},
	{
		keywords: []string{"city", "urban", "downtown", "street"},
		caption:  "City lights and late nights",
		hashtags: []string{"#citylife", "#urban", "#streetstyle", "#downtown"},
	},
	{
		keywords: []string{"sunset", "evening", "dusk", "golden"},
		caption:  "Chasing the golden hour",
		hashtags: []string{"#sunset", "#goldenhour", "#eveningsky", "#nofilter"},
	},
	{
		keywords: []string{"morning", "sunrise", "dawn", "coffee"},
		caption:  "New day, fresh start",
		hashtags: []string{"#morningvibes", "#sunrise", "#freshstart", "#riseandshine"},
	},
	{
		keywords: []string{"happy", "joy", "fun", "excited"},
		caption:  "Good times and tan lines",
		hashtags: []string{"#goodvibes", "#happydays", "#smile", "#makingmemories"},
	},
	{
		keywords: []string{"chill", "calm", "relax", "cozy"},
		caption:  "Slowing down to catch up with myself",
		hashtags: []string{"#chillmode", "#relax", "#cozyvibes", "#metime"},
	},
	{
		keywords: []string{"food", "dinner", "lunch", "brunch"},
		caption:  "Good food, good mood",
		hashtags: []string{"#foodie", "#yum", "#eats", "#tastyaf"},
	},
	{
		caption:  "Moments like these",
		hashtags: []string{"#snapcap", "#moments", "#photooftheday", "#instagood"},
	},
	{
		caption:  "Just living my story",
		hashtags: []string{"#lifestyle", "#dailylife", "#vibes", "#nofilter"},
	},
}

var genericTags = []string{
	"#snapcap", "#photooftheday", "#instagood", "#vibes", "#moments",
	"#nofilter", "#lifestyle", "#explore", "#love", "#picoftheday",
}

// fallback selects deterministically by keyword match, falling back to a
// random entry. Always exactly HashtagCount hashtags, Generated=false.
func (g *Generator) fallback(c Context) Result {
	hay := strings.ToLower(strings.Join([]string{c.Location, c.Mood, c.TimeOfDay}, " "))

	var pick *cannedEntry
	for i := range cannedPool {
		for _, kw := range cannedPool[i].keywords {
			if strings.Contains(hay, kw) {
				pick = &cannedPool[i]
				break
			}
		}
		if pick != nil {
			break
		}
	}
	if pick == nil {
		pick = &cannedPool[g.rng(len(cannedPool))]
	}

	tags := make([]string, len(pick.hashtags))
	copy(tags, pick.hashtags)
	return Result{
		Caption:   pick.caption,
		Hashtags:  padHashtags(tags, g.rng),
		Generated: false,
	}
}
