package schema

// CollectionKind names one of the three record sets.
type CollectionKind string

const (
	KindClients CollectionKind = "clients"
	KindWorkers CollectionKind = "workers"
	KindTasks   CollectionKind = "tasks"
)

// Canonical field names.
const (
	FieldClientID         = "ClientID"
	FieldClientName       = "ClientName"
	FieldPriorityLevel    = "PriorityLevel"
	FieldRequestedTaskIDs = "RequestedTaskIDs"
	FieldGroupTag         = "GroupTag"
	FieldAttributesJSON   = "AttributesJSON"

	FieldWorkerID           = "WorkerID"
	FieldWorkerName         = "WorkerName"
	FieldSkills             = "Skills"
	FieldAvailableSlots     = "AvailableSlots"
	FieldMaxLoadPerPhase    = "MaxLoadPerPhase"
	FieldWorkerGroup        = "WorkerGroup"
	FieldQualificationLevel = "QualificationLevel"

	FieldTaskID          = "TaskID"
	FieldTaskName        = "TaskName"
	FieldCategory        = "Category"
	FieldDuration        = "Duration"
	FieldRequiredSkills  = "RequiredSkills"
	FieldPreferredPhases = "PreferredPhases"
	FieldMaxConcurrent   = "MaxConcurrent"
)

var canonicalFields = map[CollectionKind][]string{
	KindClients: {
		FieldClientID, FieldClientName, FieldPriorityLevel,
		FieldRequestedTaskIDs, FieldGroupTag, FieldAttributesJSON,
	},
	KindWorkers: {
		FieldWorkerID, FieldWorkerName, FieldSkills, FieldAvailableSlots,
		FieldMaxLoadPerPhase, FieldWorkerGroup, FieldQualificationLevel,
	},
	KindTasks: {
		FieldTaskID, FieldTaskName, FieldCategory, FieldDuration,
		FieldRequiredSkills, FieldPreferredPhases, FieldMaxConcurrent,
	},
}

// Minimal columns each collection must carry to validate at all.
var requiredFields = map[CollectionKind][]string{
	KindClients: {FieldClientID, FieldClientName, FieldPriorityLevel},
	KindWorkers: {FieldWorkerID, FieldWorkerName, FieldSkills, FieldAvailableSlots, FieldMaxLoadPerPhase},
	KindTasks:   {FieldTaskID, FieldTaskName, FieldDuration, FieldRequiredSkills},
}

var idFields = map[CollectionKind]string{
	KindClients: FieldClientID,
	KindWorkers: FieldWorkerID,
	KindTasks:   FieldTaskID,
}

// CanonicalFields returns the declared schema for a collection kind.
func CanonicalFields(kind CollectionKind) []string { return canonicalFields[kind] }

// RequiredFields returns the minimal required column set for a kind.
func RequiredFields(kind CollectionKind) []string { return requiredFields[kind] }

// IDField returns the identity column for a kind.
func IDField(kind CollectionKind) string { return idFields[kind] }

// Record is one row: field name to cell value. Field names are canonical
// after ingestion, but direct host-supplied records may carry anything.
type Record map[string]Cell

// HeaderMapping records what upload-time header correction did: which raw
// headers were rewritten to canonical names and which were left alone.
type HeaderMapping struct {
	Mapped   map[string]string `json:"mapped" yaml:"mapped"`
	Unmapped []string          `json:"unmapped" yaml:"unmapped"`
}

// Collection is an ordered record set of one kind plus its header mapping.
type Collection struct {
	Kind    CollectionKind `json:"kind" yaml:"kind"`
	Records []Record       `json:"records" yaml:"records"`
	Headers HeaderMapping  `json:"headers" yaml:"headers"`
}

// NewCollection builds an empty collection of the given kind.
func NewCollection(kind CollectionKind) *Collection {
	return &Collection{Kind: kind, Headers: HeaderMapping{Mapped: map[string]string{}}}
}

// Value resolves a canonical field against a record: direct key first, then
// back through the recorded original header. Missing when neither hits.
func (c *Collection) Value(r Record, field string) Cell {
	if v, ok := r[field]; ok {
		return v
	}
	for original, canonical := range c.Headers.Mapped {
		if canonical == field {
			if v, ok := r[original]; ok {
				return v
			}
		}
	}
	return Missing
}

// IDs returns the identity column values in record order.
func (c *Collection) IDs() []string {
	out := make([]string, 0, len(c.Records))
	for _, r := range c.Records {
		out = append(out, c.Value(r, IDField(c.Kind)).String())
	}
	return out
}

// Dataset is the full three-collection snapshot validation runs over.
type Dataset struct {
	Clients *Collection
	Workers *Collection
	Tasks   *Collection
}

// NewDataset wires a dataset, substituting empty collections for nil so
// checks never special-case absence.
func NewDataset(clients, workers, tasks *Collection) *Dataset {
	if clients == nil {
		clients = NewCollection(KindClients)
	}
	if workers == nil {
		workers = NewCollection(KindWorkers)
	}
	if tasks == nil {
		tasks = NewCollection(KindTasks)
	}
	return &Dataset{Clients: clients, Workers: workers, Tasks: tasks}
}

// Collection returns the member of the given kind.
func (d *Dataset) Collection(kind CollectionKind) *Collection {
	switch kind {
	case KindClients:
		return d.Clients
	case KindWorkers:
		return d.Workers
	case KindTasks:
		return d.Tasks
	}
	return nil
}
