package cli

import "trivia-quiz-service/internal/domain"

// sampleQuestions is a small built-in catalog for running without Postgres. It holds
// just enough questions for one full attempt plus a few spares.
func sampleQuestions() []domain.Question {
	questions := []domain.Question{
		{ID: "sample-01", Prompt: "What is the capital of Australia?", Category: "Geography", Difficulty: domain.DifficultyEasy,
			CorrectAnswer: "Canberra", IncorrectAnswers: []string{"Sydney", "Melbourne", "Perth"}},
		{ID: "sample-02", Prompt: "Which planet is known as the Red Planet?", Category: "Science", Difficulty: domain.DifficultyEasy,
			CorrectAnswer: "Mars", IncorrectAnswers: []string{"Venus", "Jupiter", "Mercury"}},
		{ID: "sample-03", Prompt: "How many bits are in a byte?", Category: "Computers", Difficulty: domain.DifficultyEasy,
			CorrectAnswer: "8", IncorrectAnswers: []string{"4", "16", "32"}},
		{ID: "sample-04", Prompt: "Who painted the Mona Lisa?", Category: "Art", Difficulty: domain.DifficultyEasy,
			CorrectAnswer: "Leonardo da Vinci", IncorrectAnswers: []string{"Michelangelo", "Raphael", "Donatello"}},
		{ID: "sample-05", Prompt: "Water boils at 100 degrees Celsius at sea level.", Category: "Science", Difficulty: domain.DifficultyEasy,
			Type: domain.QuestionBoolean, CorrectAnswer: "True", IncorrectAnswers: []string{"False"}},
		{ID: "sample-06", Prompt: "What is the chemical symbol for gold?", Category: "Science", Difficulty: domain.DifficultyMedium,
			CorrectAnswer: "Au", IncorrectAnswers: []string{"Ag", "Gd", "Go"}},
		{ID: "sample-07", Prompt: "In which year did the Berlin Wall fall?", Category: "History", Difficulty: domain.DifficultyMedium,
			CorrectAnswer: "1989", IncorrectAnswers: []string{"1987", "1991", "1961"}},
		{ID: "sample-08", Prompt: "Which language was created by Rob Pike, Ken Thompson and Robert Griesemer?", Category: "Computers", Difficulty: domain.DifficultyMedium,
			CorrectAnswer: "Go", IncorrectAnswers: []string{"Rust", "Swift", "Kotlin"}},
		{ID: "sample-09", Prompt: "What is the largest ocean on Earth?", Category: "Geography", Difficulty: domain.DifficultyEasy,
			CorrectAnswer: "Pacific", IncorrectAnswers: []string{"Atlantic", "Indian", "Arctic"}},
		{ID: "sample-10", Prompt: "The Great Wall of China is visible from the Moon with the naked eye.", Category: "General", Difficulty: domain.DifficultyMedium,
			Type: domain.QuestionBoolean, CorrectAnswer: "False", IncorrectAnswers: []string{"True"}},
		{ID: "sample-11", Prompt: "How many strings does a standard violin have?", Category: "Music", Difficulty: domain.DifficultyMedium,
			CorrectAnswer: "4", IncorrectAnswers: []string{"5", "6", "3"}},
		{ID: "sample-12", Prompt: "What is the smallest prime number?", Category: "Mathematics", Difficulty: domain.DifficultyHard,
			CorrectAnswer: "2", IncorrectAnswers: []string{"1", "0", "3"}},
	}
	for i, q := range questions {
		// fills the default type; every entry above is valid
		questions[i], _ = q.Normalize()
	}
	return questions
}
