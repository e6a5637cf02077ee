package intake

// Questions is the fixed intake questionnaire. Every analysis returns the
// same ten questions in the same order; answers are matched to questions by
// index.
var Questions = []string{
	"How long have you been experiencing these symptoms?",
	"On a scale of 1-10, how severe are your symptoms?",
	"When did the symptoms first start (date/time)?",
	"Do the symptoms come and go, or are they constant?",
	"Have you experienced this before?",
	"Have you taken any medication for this? If yes, which ones?",
	"Does anything make the symptoms better or worse?",
	"Do you have any other symptoms you haven't mentioned?",
	"How does this affect your daily activities (work, sleep, exercise)?",
	"Have you noticed any recent changes in your health or lifestyle?",
}
