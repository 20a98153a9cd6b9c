package bus

// Topic names the collection a notification is about.
type Topic string

// Topics, one per persisted collection. TopicAll is used for notifications
// that are not about a single collection.
const (
	TopicAll            Topic = "*"
	TopicTasks          Topic = "tasks"
	TopicSuggestions    Topic = "suggestions"
	TopicTraining       Topic = "training"
	TopicEquipment      Topic = "equipment"
	TopicIncidents      Topic = "incidents"
	TopicRisks          Topic = "risks"
	TopicAudits         Topic = "audits"
	TopicEIP            Topic = "eip"
	TopicEvacuations    Topic = "evacuations"
	TopicPermits        Topic = "permits"
	TopicKPI            Topic = "kpi"
	TopicWaste          Topic = "waste"
	TopicContracts      Topic = "contracts"
	TopicQuestionnaires Topic = "questionnaires"
)

var collectionTopics = []Topic{
	TopicTasks, TopicSuggestions, TopicTraining, TopicEquipment, TopicIncidents,
	TopicRisks, TopicAudits, TopicEIP, TopicEvacuations, TopicPermits, TopicKPI,
	TopicWaste, TopicContracts, TopicQuestionnaires,
}

// CollectionTopics lists every per-collection topic (TopicAll excluded).
func CollectionTopics() []Topic {
	return append([]Topic(nil), collectionTopics...)
}

// Valid reports whether t is a known topic.
func (t Topic) Valid() bool {
	if t == TopicAll {
		return true
	}
	for _, c := range collectionTopics {
		if c == t {
			return true
		}
	}
	return false
}

// Matches reports whether a handler interested in t should react to got.
func (t Topic) Matches(got Topic) bool {
	return t == TopicAll || got == TopicAll || t == got
}
