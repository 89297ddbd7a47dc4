package model

// Location is one entry of the campus photo catalog.
type Location struct {
	ID              string `json:"id" bson:"_id"`
	ImageRef        string `json:"imageRef" bson:"imageRef"`
	TrueLocation    Point  `json:"trueLocation" bson:"trueLocation"`
	TrueFloor       *int   `json:"trueFloor,omitempty" bson:"trueFloor,omitempty"`
	AvailableFloors []int  `json:"availableFloors,omitempty" bson:"availableFloors,omitempty"`
}
