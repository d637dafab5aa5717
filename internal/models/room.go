package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Room struct {
	ID       primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Code     string             `json:"code" bson:"code"` // e.g. "A-201", "L-1"
	Name     string             `json:"name" bson:"name"`
	Capacity int                `json:"capacity" bson:"capacity"`
	Location string             `json:"location,omitempty" bson:"location,omitempty"`
	Kind     string             `json:"kind" bson:"type"` // classroom or lab
}

type ReservationStatus string

const (
	ReservationApproved  ReservationStatus = "APPROVED"
	ReservationPending   ReservationStatus = "PENDING"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// RoomReservation blocks a room for specific academic hours on one date.
// Blocks use the same 1-15 hour grid as section schedules so reservation
// clashes and class clashes are checked with the same primitive.
type RoomReservation struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RoomID    primitive.ObjectID `json:"room_id" bson:"room"`
	TeacherID primitive.ObjectID `json:"teacher_id" bson:"teacher"`
	Date      time.Time          `json:"date" bson:"date"`
	Day       string             `json:"day" bson:"day"` // weekday name, for clashes with regular classes
	Blocks    []int              `json:"blocks" bson:"blocks"`
	Reason    string             `json:"reason,omitempty" bson:"reason,omitempty"`
	Status    ReservationStatus  `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
