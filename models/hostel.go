package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoomStatus is the availability state of a hostel room.
type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomFull        RoomStatus = "full"
	RoomMaintenance RoomStatus = "maintenance"
	RoomClosed      RoomStatus = "closed"
)

// AllocationStatus tracks a hostel allocation from application to check-out.
type AllocationStatus string

const (
	AllocationAllocated  AllocationStatus = "allocated"
	AllocationCheckedIn  AllocationStatus = "checked_in"
	AllocationCheckedOut AllocationStatus = "checked_out"
	AllocationCancelled  AllocationStatus = "cancelled"
)

// CanTransitionAllocation reports whether a hostel allocation may move between
// two statuses. Checked-out and cancelled are terminal.
func CanTransitionAllocation(from, to AllocationStatus) bool {
	allowed := map[AllocationStatus][]AllocationStatus{
		AllocationAllocated: {AllocationCheckedIn, AllocationCancelled},
		AllocationCheckedIn: {AllocationCheckedOut},
	}
	for _, next := range allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IDCardStatus tracks an ID card request through production and pickup.
type IDCardStatus string

const (
	IDCardRequested IDCardStatus = "requested"
	IDCardApproved  IDCardStatus = "approved"
	IDCardPrinting  IDCardStatus = "printing"
	IDCardReady     IDCardStatus = "ready_for_pickup"
	IDCardCollected IDCardStatus = "collected"
	IDCardCancelled IDCardStatus = "cancelled"
)

// CanTransitionIDCard reports whether an ID card request may move between two
// statuses. The flow is linear; a request is cancellable until collected.
func CanTransitionIDCard(from, to IDCardStatus) bool {
	if to == IDCardCancelled {
		return from != IDCardCollected && from != IDCardCancelled
	}
	allowed := map[IDCardStatus]IDCardStatus{
		IDCardRequested: IDCardApproved,
		IDCardApproved:  IDCardPrinting,
		IDCardPrinting:  IDCardReady,
		IDCardReady:     IDCardCollected,
	}
	return allowed[from] == to
}

// HostelBlock model
type HostelBlock struct {
	BaseModel
	Name        string `json:"name" gorm:"size:255;not null;uniqueIndex"`
	Code        string `json:"code" gorm:"size:50;not null;uniqueIndex"`
	Description string `json:"description" gorm:"type:text"`
	TotalRooms  int    `json:"total_rooms"`
	BlockType   string `json:"block_type" gorm:"size:20;default:'mixed';type:enum('male','female','mixed')"`
	WardenName  string `json:"warden_name" gorm:"size:200"`
	WardenPhone string `json:"warden_phone" gorm:"size:20"`
	IsActive    bool   `json:"is_active" gorm:"default:true"`

	// Relationships
	Rooms []HostelRoom `json:"rooms,omitempty" gorm:"foreignKey:HostelBlockID"`
}

// HostelRoom model. CurrentOccupants is maintained under a row lock by the
// allocation flow.
type HostelRoom struct {
	BaseModel
	HostelBlockID    uint            `json:"hostel_block_id" gorm:"not null;index"`
	RoomNumber       string          `json:"room_number" gorm:"size:50;not null;uniqueIndex"`
	Capacity         int             `json:"capacity" gorm:"not null"`
	CurrentOccupants int             `json:"current_occupants" gorm:"default:0"`
	Status           RoomStatus      `json:"status" gorm:"size:50;default:'available';type:enum('available','full','maintenance','closed')"`
	FeePerSemester   decimal.Decimal `json:"accommodation_fee_per_semester" gorm:"type:decimal(12,2)"`

	// Relationships
	HostelBlock HostelBlock `json:"hostel_block,omitempty" gorm:"foreignKey:HostelBlockID"`
}

// HostelAllocation is one student's room for one session; the
// (student, session) pair is unique.
type HostelAllocation struct {
	BaseModel
	StudentID         uint             `json:"student_id" gorm:"not null;uniqueIndex:idx_allocation_student_session;index"`
	HostelRoomID      uint             `json:"hostel_room_id" gorm:"not null;index"`
	AcademicSessionID uint             `json:"academic_session_id" gorm:"not null;uniqueIndex:idx_allocation_student_session"`
	AllocationDate    time.Time        `json:"allocation_date" gorm:"not null"`
	CheckInDate       *time.Time       `json:"check_in_date"`
	CheckOutDate      *time.Time       `json:"check_out_date"`
	Status            AllocationStatus `json:"status" gorm:"size:50;not null;default:'allocated';type:enum('allocated','checked_in','checked_out','cancelled');index"`
	Remarks           string           `json:"allocation_remarks" gorm:"type:text"`

	// Relationships
	Student         Student         `json:"student,omitempty" gorm:"foreignKey:StudentID"`
	HostelRoom      HostelRoom      `json:"hostel_room,omitempty" gorm:"foreignKey:HostelRoomID"`
	AcademicSession AcademicSession `json:"academic_session,omitempty" gorm:"foreignKey:AcademicSessionID"`
}

// IDCardRequest model. A student may hold at most one open request; closed
// means collected or cancelled.
type IDCardRequest struct {
	BaseModel
	StudentID          uint         `json:"student_id" gorm:"not null;index"`
	RequestNumber      string       `json:"request_number" gorm:"size:50;not null;uniqueIndex"`
	Status             IDCardStatus `json:"status" gorm:"size:50;not null;default:'requested';type:enum('requested','approved','printing','ready_for_pickup','collected','cancelled');index"`
	RequestedAt        time.Time    `json:"requested_at" gorm:"not null"`
	ApprovedAt         *time.Time   `json:"approved_at"`
	PrintedAt          *time.Time   `json:"printed_at"`
	ReadyAt            *time.Time   `json:"ready_at"`
	CollectedAt        *time.Time   `json:"collected_at"`
	CollectionLocation string       `json:"collection_location" gorm:"size:255"`
	Remarks            string       `json:"remarks" gorm:"type:text"`
	ApprovedBy         *uint        `json:"approved_by"`

	// Relationships
	Student Student `json:"student,omitempty" gorm:"foreignKey:StudentID"`
}
