package schema

// ContentPersonTable represents the 'content.person' table.
type ContentPersonTable struct {
	Table    string
	ID       string
	FullName string
	Created  string
	Modified string
}

// ContentPerson is the schema definition for content.person.
var ContentPerson = ContentPersonTable{
	Table:    "content.person",
	ID:       "id",
	FullName: "full_name",
	Created:  "created",
	Modified: "modified",
}

func (t ContentPersonTable) Columns() []string {
	return []string{t.ID, t.FullName, t.Created, t.Modified}
}
