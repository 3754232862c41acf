package proto

// CollectionTypeView is the listCollections type of a view.
const CollectionTypeView = "view"

// CollectionInfo is one entry of the listCollections cursor.
type CollectionInfo struct {
	Name string `bson:"name"`
	Type string `bson:"type"` // collection, view or timeseries
	Info struct {
		ReadOnly bool `bson:"readOnly"`
	} `bson:"info"`
}

// IsView returns true for entries that are views and have no indexes of their own.
func (c CollectionInfo) IsView() bool {
	return c.Type == CollectionTypeView
}
