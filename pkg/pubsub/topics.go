package pubsub

// Topic layout shared by every client.
const (
	// TopicPresence carries retained "{name}:{status}" events.
	TopicPresence = "presence"

	// TopicLocationUpdates carries the name of a user whose profile
	// changed, signaling peers to re-fetch the registry snapshot.
	TopicLocationUpdates = "location_updates"

	personalPrefix = "messages/"
)

// PersonalTopic returns the inbox topic for a user.
func PersonalTopic(name string) string {
	return personalPrefix + name
}

// IsPersonalTopic reports whether topic is a personal inbox topic and,
// if so, returns the owner's name.
func IsPersonalTopic(topic string) (string, bool) {
	if len(topic) <= len(personalPrefix) || topic[:len(personalPrefix)] != personalPrefix {
		return "", false
	}
	return topic[len(personalPrefix):], true
}
