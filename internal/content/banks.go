package content

var defaultQuestions = []Question{
	{ID: "q1", Text: "What's the most questionable thing you've ever eaten on purpose?"},
	{ID: "q2", Text: "Which dish could you eat every day for a year?"},
	{ID: "q3", Text: "What's a food opinion you'd defend in an argument?"},
	{ID: "q4", Text: "What was your go-to meal as a ten-year-old?"},
	{ID: "q5", Text: "If this table split the bill by confidence, who pays the most?"},
	{ID: "q6", Text: "What's the best meal you've had in this city?"},
	{ID: "q7", Text: "Which cuisine do you secretly not get the hype about?"},
	{ID: "q8", Text: "What's your most reliable kitchen disaster story?"},
	{ID: "q9", Text: "What would your last meal be, course by course?"},
	{ID: "q10", Text: "Who at this table would survive longest as a street-food vendor?"},
}

var defaultWordPairs = []WordPair{
	{ID: "wp1", Word: "espresso", Decoy: "ristretto"},
	{ID: "wp2", Word: "dumpling", Decoy: "ravioli"},
	{ID: "wp3", Word: "pancake", Decoy: "crepe"},
	{ID: "wp4", Word: "taco", Decoy: "burrito"},
	{ID: "wp5", Word: "ramen", Decoy: "pho"},
	{ID: "wp6", Word: "croissant", Decoy: "danish"},
	{ID: "wp7", Word: "gelato", Decoy: "sorbet"},
	{ID: "wp8", Word: "paella", Decoy: "risotto"},
	{ID: "wp9", Word: "kebab", Decoy: "gyro"},
	{ID: "wp10", Word: "cider", Decoy: "perry"},
}
