package sentiment

import "github.com/jonreiter/govader"

// Analyzer scores blog post text. The recommend signal is a strict
// threshold on the positive polarity component: any detectable positive
// sentiment is sufficient, a positive score of exactly zero is not.
type Analyzer struct {
	vader *govader.SentimentIntensityAnalyzer
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{vader: govader.NewSentimentIntensityAnalyzer()}
}

// HasPositiveSentiment reports whether any positive sentiment is detected.
func (a *Analyzer) HasPositiveSentiment(text string) bool {
	scores := a.vader.PolarityScores(text)
	return scores.Positive > 0
}

// Classify returns the recommend decision together with the extracted tags.
// It is deterministic for a given input.
func (a *Analyzer) Classify(text string) (bool, []string) {
	return a.HasPositiveSentiment(text), TopTags(text, maxTags)
}
