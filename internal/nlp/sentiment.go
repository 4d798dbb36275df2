package nlp

// afinn is a subset of the AFINN-165 valence lexicon (-5..5), extended with a
// few hedging words that matter for spoken-answer confidence.
var afinn = map[string]int{
	"able": 1, "absolutely": 1, "accomplish": 2, "accomplished": 2, "accurate": 2,
	"achieve": 2, "achieved": 2, "active": 1, "advantage": 2, "advantages": 2,
	"agree": 1, "amazing": 4, "appreciate": 2, "awesome": 4, "bad": -3,
	"benefit": 2, "benefits": 2, "best": 3, "better": 2, "bored": -2,
	"boring": -3, "broken": -1, "capable": 1, "certain": 1, "certainly": 1,
	"challenge": -1, "clear": 1, "clearly": 1, "comfortable": 2, "committed": 1,
	"competent": 2, "complex": -1, "confident": 2, "confidently": 2, "confused": -2,
	"confusing": -2, "convinced": 1, "cool": 1, "correct": 2, "creative": 2,
	"definitely": 1, "difficult": -1, "disappointed": -2, "doubt": -1, "doubtful": -1,
	"eager": 2, "easy": 1, "effective": 2, "efficient": 2, "enjoy": 2,
	"enthusiastic": 3, "error": -2, "errors": -2, "excellent": 3, "excited": 3,
	"expert": 2, "fail": -2, "failed": -2, "failure": -2, "fair": 2,
	"fantastic": 4, "fault": -2, "fine": 2, "fix": 1, "fixed": 1,
	"forgot": -1, "fortunately": 2, "good": 3, "great": 3, "guess": -1,
	"happy": 3, "hard": -1, "hate": -3, "helpful": 2, "hesitant": -2,
	"honest": 2, "hope": 2, "ideal": 2, "ignorant": -2, "impressive": 3,
	"improve": 2, "improved": 2, "improvement": 2, "inability": -2, "incorrect": -2,
	"innovative": 2, "interested": 2, "interesting": 2, "issue": -1, "issues": -1,
	"lack": -2, "lacking": -2, "lead": 1, "learned": 1, "like": 2,
	"lose": -3, "lost": -3, "love": 3, "maybe": -1, "mess": -2,
	"mistake": -2, "mistakes": -2, "motivated": 1, "negative": -2, "nervous": -2,
	"nice": 3, "no": -1, "not": -1, "optimal": 2, "passionate": 2,
	"perfect": 3, "perfectly": 3, "poor": -2, "positive": 2, "powerful": 2,
	"prefer": 1, "probably": -1, "problem": -2, "problems": -2, "productive": 2,
	"proficient": 2, "proud": 2, "reliable": 2, "resolve": 2, "resolved": 2,
	"robust": 2, "scalable": 1, "secure": 2, "significant": 1, "simple": 1,
	"skilled": 2, "smart": 1, "solid": 2, "solution": 1, "solutions": 1,
	"solve": 1, "solved": 1, "sorry": -1, "strong": 2, "stuck": -2,
	"success": 2, "successful": 3, "successfully": 3, "sure": 1, "terrible": -3,
	"thorough": 2, "trouble": -2, "unclear": -1, "understand": 1, "unfortunately": -2,
	"unsure": -1, "useful": 2, "valuable": 2, "weak": -2, "win": 4,
	"wonderful": 4, "worried": -3, "worry": -3, "worse": -3, "worst": -3,
	"wrong": -2,
}

// Sentiment returns the mean lexicon valence per token. Unknown words count
// as zero, so long neutral answers drift toward zero. An empty slice yields 0.
func Sentiment(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0
	}
	sum := 0
	for _, t := range tokens {
		sum += afinn[t]
	}
	return float64(sum) / float64(len(tokens))
}
