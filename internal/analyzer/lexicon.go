package analyzer

// Word lists based on the Loughran-McDonald financial sentiment dictionaries,
// extended with common market-news verbs.

var positiveWords = []string{
	"achieve", "advance", "advances", "attain", "beat", "beats", "benefit",
	"better", "boost", "boosts", "breakthrough", "bullish", "collaboration",
	"competitive", "delight", "enhance", "excellent", "exceptional", "exciting",
	"expand", "expands", "expansion", "extraordinary", "favorable", "gain",
	"gains", "good", "great", "grew", "growth", "improve", "improved",
	"improvement", "innovation", "innovative", "jump", "jumps", "leader",
	"leading", "milestone", "opportunity", "optimal", "optimistic",
	"outperform", "partnership", "positive", "profit", "profitable",
	"progress", "prosper", "rally", "rallies", "record", "remarkable",
	"robust", "rise", "rises", "soar", "soars", "solid", "strength", "strong",
	"succeed", "success", "successful", "superior", "surge", "surges",
	"surpass", "tremendous", "upbeat", "upgrade", "upgrades", "valuable",
	"win", "wins", "winning",
}

var negativeWords = []string{
	"abandon", "adverse", "bearish", "challenge", "challenging", "concern",
	"concerns", "crash", "crisis", "cut", "cuts", "damage", "debt", "decline",
	"declines", "decrease", "deficit", "delay", "delays", "deteriorate",
	"difficult", "difficulty", "disappoint", "disappointing", "disadvantage",
	"downgrade", "downgrades", "downturn", "drop", "drops", "erode", "fail",
	"failure", "fall", "falling", "falls", "fear", "headwind", "impair",
	"impairment", "inability", "inadequate", "ineffective", "lawsuit", "loss",
	"losses", "miss", "misses", "negative", "obstacle", "plunge", "plunges",
	"poor", "problem", "recession", "restructuring", "risk", "risks", "selloff",
	"slide", "slow", "slowdown", "slump", "tumble", "tumbles", "underperform",
	"unfavorable", "unprofitable", "volatile", "volatility", "weak",
	"weakness", "worse", "worsen", "worst",
}

var uncertaintyWords = []string{
	"almost", "anticipate", "anticipates", "appear", "appears",
	"approximately", "assume", "assumes", "believe", "believes", "could",
	"depend", "depending", "estimate", "estimates", "expect", "expects",
	"if", "likely", "may", "maybe", "might", "pending", "perhaps", "possible",
	"possibly", "potential", "predict", "predicts", "should", "somewhat",
	"speculation", "suggest", "suggests", "uncertain", "uncertainty",
	"unclear", "unlikely", "variable",
}
