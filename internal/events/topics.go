package events

// Topic constants for domain events emitted by the marketplace.
const (
	TopicDealCreated  = "deal.created"
	TopicDealAccepted = "deal.accepted"
	TopicDealDeclined = "deal.declined"
	TopicCropCreated  = "crop.created"
	TopicCropUpdated  = "crop.updated"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicDealCreated,
		TopicDealAccepted,
		TopicDealDeclined,
		TopicCropCreated,
		TopicCropUpdated,
	}
}
