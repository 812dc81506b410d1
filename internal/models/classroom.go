package models

import "time"

// Classroom represents a bookable room.
type Classroom struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	RoomType  string    `db:"room_type" json:"room_type"`
	Capacity  int       `db:"capacity" json:"capacity"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ClassroomFilter captures filtering options for listing classrooms.
type ClassroomFilter struct {
	RoomType    string
	MinCapacity int
	Search      string
	Active      *bool
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
