package todo

import "errors"

// ErrNotFound is returned by every store when the requested id does not exist.
// Its text is the detail message sent to clients.
var ErrNotFound = errors.New("Todo not found")

// Todo is the single persisted record of the service. ID is assigned by the
// store on insert and never changes afterwards.
type Todo struct {
	ID      int64  `json:"id" gorm:"primaryKey;autoIncrement" bson:"_id"`
	Content string `json:"content" gorm:"not null;index" bson:"content"`
}

// TableName keeps the relational table name singular.
func (Todo) TableName() string {
	return "todo"
}
