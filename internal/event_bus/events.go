package event_bus

const (
	// EventTypeCategoryDeleted fires after a category is removed from the
	// gateway. Transactions keeping a joined category name must drop it.
	EventTypeCategoryDeleted EventType = "category.deleted"
	// EventTypeGoalAchieved fires when an add-funds mutation fills a goal
	// up to its target.
	EventTypeGoalAchieved EventType = "goal.achieved"
)

type CategoryDeleted struct {
	OwnerID    string
	CategoryID string
}

type GoalAchieved struct {
	OwnerID string
	GoalID  string
	Name    string
}
