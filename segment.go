package typeproof

import (
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"golang.org/x/text/unicode/bidi"
)

// guessDirection resolves the run direction of text from its first bidi
// run. The pipeline renders a single run, so paragraph-level segmentation
// is out of scope; the dominant direction is enough.
func guessDirection(text string) di.Direction {
	p := bidi.Paragraph{}
	_, _ = p.SetString(text, bidi.DefaultDirection(bidi.Neutral))

	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return di.DirectionLTR
	}
	run := ordering.Run(0)
	if run.Direction() == bidi.RightToLeft {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// guessScript returns the script of the first non-space rune.
// Mixed-script text would need run splitting, which this pipeline does
// not perform.
func guessScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
