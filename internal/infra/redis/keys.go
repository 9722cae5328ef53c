package redis

const (
	catalogKey     = "trivia:catalog"
	leaderboardKey = "trivia:leaderboard"
)

func attemptKey(id string) string {
	return "trivia:attempt:" + id
}

func userCompletedKey(userID string) string {
	return "trivia:user:" + userID + ":completed"
}

func sessionKey(userID string) string {
	return "trivia:session:" + userID
}
