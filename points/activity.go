package points

// Activity is a kind of interaction that earns a fixed number of points.
type Activity string

// Activities tracked by the community.
const (
	ActivityReaction Activity = "reaction"
	ActivityMessage  Activity = "message"
	ActivityVocal    Activity = "vocal"
	ActivityEvent    Activity = "event"
	ActivityQuiz     Activity = "quiz"
	ActivityInvite   Activity = "invite"
	ActivityNitro    Activity = "nitro"
)

// DefaultActivityPoints returns the standard points table.
func DefaultActivityPoints() map[Activity]int64 {
	return map[Activity]int64{
		ActivityReaction: 1,
		ActivityMessage:  2,
		ActivityVocal:    5,
		ActivityEvent:    20,
		ActivityQuiz:     3,
		ActivityInvite:   15,
		ActivityNitro:    50,
	}
}
