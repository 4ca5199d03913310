package controllers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"munaucollege_go/database"
	"munaucollege_go/middleware"
	"munaucollege_go/models"
	"munaucollege_go/services/notifications"
	"munaucollege_go/utils"
)

type HostelController struct{}

var (
	errRoomUnavailable  = errors.New("room unavailable")
	errAlreadyAllocated = errors.New("already allocated")
)

// HostelBlockRequest represents the block creation request body
type HostelBlockRequest struct {
	Name        string `json:"name" validate:"required"`
	Code        string `json:"code" validate:"required"`
	Description string `json:"description"`
	TotalRooms  int    `json:"total_rooms"`
	BlockType   string `json:"block_type"`
	WardenName  string `json:"warden_name"`
	WardenPhone string `json:"warden_phone"`
}

// HostelRoomRequest represents the room creation request body. The fee is a
// string so the JSON layer never touches floats.
type HostelRoomRequest struct {
	HostelBlockID  uint   `json:"hostel_block_id" validate:"required"`
	RoomNumber     string `json:"room_number" validate:"required"`
	Capacity       int    `json:"capacity" validate:"required,min=1"`
	FeePerSemester string `json:"accommodation_fee_per_semester" validate:"required"`
}

// GetBlocks lists active hostel blocks with their rooms
func (hc *HostelController) GetBlocks(c *fiber.Ctx) error {
	var blocks []models.HostelBlock
	if err := database.DB.Preload("Rooms").Where("is_active = ?", true).
		Order("name").Find(&blocks).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch hostel blocks",
		})
	}

	return c.JSON(fiber.Map{
		"blocks": blocks,
		"count":  len(blocks),
	})
}

// CreateBlock adds a hostel block (admin)
func (hc *HostelController) CreateBlock(c *fiber.Ctx) error {
	var req HostelBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	blockType := req.BlockType
	if blockType == "" {
		blockType = "mixed"
	}
	block := models.HostelBlock{
		Name:        req.Name,
		Code:        req.Code,
		Description: req.Description,
		TotalRooms:  req.TotalRooms,
		BlockType:   blockType,
		WardenName:  req.WardenName,
		WardenPhone: req.WardenPhone,
		IsActive:    true,
	}
	if err := database.DB.Create(&block).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Hostel block name or code already exists",
		})
	}

	middleware.LogActivity(c, "CREATE", "hostel_blocks", block.ID, fiber.Map{
		"code": block.Code,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Hostel block created successfully",
		"block":   block,
	})
}

// CreateRoom adds a room to a hostel block (admin)
func (hc *HostelController) CreateRoom(c *fiber.Ctx) error {
	var req HostelRoomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Validation failed",
			"details": err.Error(),
		})
	}

	fee, err := decimal.NewFromString(req.FeePerSemester)
	if err != nil || fee.IsNegative() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid accommodation fee",
		})
	}

	var block models.HostelBlock
	if err := database.DB.First(&block, req.HostelBlockID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Hostel block not found",
		})
	}

	room := models.HostelRoom{
		HostelBlockID:  block.ID,
		RoomNumber:     req.RoomNumber,
		Capacity:       req.Capacity,
		Status:         models.RoomAvailable,
		FeePerSemester: fee,
	}
	if err := database.DB.Create(&room).Error; err != nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Room number already exists",
		})
	}

	middleware.LogActivity(c, "CREATE", "hostel_rooms", room.ID, fiber.Map{
		"room_number": room.RoomNumber,
		"block_id":    block.ID,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Room created successfully",
		"room":    room,
	})
}

// GetMyAllocation returns the student's allocation for the current session
func (hc *HostelController) GetMyAllocation(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}
	session, err := currentSession()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No current academic session",
		})
	}

	var allocation models.HostelAllocation
	err = database.DB.Preload("HostelRoom").Preload("HostelRoom.HostelBlock").
		Where("student_id = ? AND academic_session_id = ?", student.ID, session.ID).
		First(&allocation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(fiber.Map{
				"allocation": nil,
				"session":    session.SessionName,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch allocation",
		})
	}

	return c.JSON(fiber.Map{
		"allocation": allocation,
		"session":    session.SessionName,
	})
}

// ApplyForRoom allocates a room to the student for the current session. The
// row lock on the room serializes concurrent applications so the occupancy
// count never exceeds capacity.
func (hc *HostelController) ApplyForRoom(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}
	session, err := currentSession()
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No current academic session",
		})
	}

	var req struct {
		HostelRoomID uint   `json:"hostel_room_id"`
		Remarks      string `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil || req.HostelRoomID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var allocation models.HostelAllocation
	var room models.HostelRoom
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&room, req.HostelRoomID).Error; err != nil {
			return err
		}
		if room.Status != models.RoomAvailable || room.CurrentOccupants >= room.Capacity {
			return errRoomUnavailable
		}

		allocation = models.HostelAllocation{
			StudentID:         student.ID,
			HostelRoomID:      room.ID,
			AcademicSessionID: session.ID,
			AllocationDate:    time.Now(),
			Status:            models.AllocationAllocated,
			Remarks:           req.Remarks,
		}
		if err := tx.Create(&allocation).Error; err != nil {
			return errAlreadyAllocated
		}

		occupants := room.CurrentOccupants + 1
		updates := map[string]interface{}{"current_occupants": occupants}
		if occupants >= room.Capacity {
			updates["status"] = models.RoomFull
		}
		return tx.Model(&room).Updates(updates).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Room not found",
			})
		case errors.Is(err, errRoomUnavailable):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Room is not available",
			})
		case errors.Is(err, errAlreadyAllocated):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "You already have a hostel allocation for this session",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to allocate room",
			})
		}
	}

	middleware.LogActivity(c, "CREATE", "hostel_allocations", allocation.ID, fiber.Map{
		"room_number": room.RoomNumber,
		"session":     session.SessionName,
	})

	go func(userID uint, roomNumber string) {
		svc := notifications.NewService()
		if err := svc.EnqueueOrCreate([]uint{userID}, notifications.HostelRoomAllocated(roomNumber)); err != nil {
			logrus.WithError(err).Warn("failed to dispatch hostel allocation notification")
		}
	}(student.UserID, room.RoomNumber)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Hostel room allocated successfully",
		"allocation": allocation,
	})
}

// UpdateAllocationStatus moves an allocation to checked_in, checked_out or
// cancelled (staff). Leaving the room frees the bed space.
func (hc *HostelController) UpdateAllocationStatus(c *fiber.Ctx) error {
	allocationID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid allocation ID",
		})
	}

	var req struct {
		Status  string `json:"status"`
		Remarks string `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	target := models.AllocationStatus(req.Status)

	now := time.Now()
	var allocation models.HostelAllocation
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&allocation, uint(allocationID)).Error; err != nil {
			return err
		}
		if !models.CanTransitionAllocation(allocation.Status, target) {
			return errRoomUnavailable
		}

		updates := map[string]interface{}{"status": target}
		if req.Remarks != "" {
			updates["allocation_remarks"] = req.Remarks
		}
		switch target {
		case models.AllocationCheckedIn:
			updates["check_in_date"] = now
		case models.AllocationCheckedOut:
			updates["check_out_date"] = now
		}
		if err := tx.Model(&allocation).Updates(updates).Error; err != nil {
			return err
		}
		allocation.Status = target

		// A vacated or cancelled allocation frees the bed space
		if target == models.AllocationCheckedOut || target == models.AllocationCancelled {
			var room models.HostelRoom
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&room, allocation.HostelRoomID).Error; err != nil {
				return err
			}
			occupants := room.CurrentOccupants - 1
			if occupants < 0 {
				occupants = 0
			}
			roomUpdates := map[string]interface{}{"current_occupants": occupants}
			if room.Status == models.RoomFull && occupants < room.Capacity {
				roomUpdates["status"] = models.RoomAvailable
			}
			return tx.Model(&room).Updates(roomUpdates).Error
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Allocation not found",
			})
		case errors.Is(err, errRoomUnavailable):
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error": "Allocation cannot move to status " + req.Status,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update allocation",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "hostel_allocations", allocation.ID, fiber.Map{
		"status": req.Status,
	})

	return c.JSON(fiber.Map{
		"message":    "Allocation updated",
		"allocation": allocation,
	})
}

// RequestIDCard opens an ID card request for the student. At most one request
// may be open at a time.
func (hc *HostelController) RequestIDCard(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var open int64
	database.DB.Model(&models.IDCardRequest{}).
		Where("student_id = ? AND status NOT IN ?", student.ID,
			[]models.IDCardStatus{models.IDCardCollected, models.IDCardCancelled}).
		Count(&open)
	if open > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "You already have a pending ID card request",
		})
	}

	request := models.IDCardRequest{
		StudentID:     student.ID,
		RequestNumber: utils.GenerateIDCardRequestNumber(),
		Status:        models.IDCardRequested,
		RequestedAt:   time.Now(),
	}
	if err := database.DB.Create(&request).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create ID card request",
		})
	}

	middleware.LogActivity(c, "CREATE", "id_card_requests", request.ID, fiber.Map{
		"request_number": request.RequestNumber,
	})

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "ID card request submitted successfully",
		"request": request,
	})
}

// GetMyIDCardRequests lists the student's ID card requests, newest first
func (hc *HostelController) GetMyIDCardRequests(c *fiber.Ctx) error {
	student, err := currentStudent(c)
	if err != nil {
		return err
	}

	var requests []models.IDCardRequest
	if err := database.DB.Where("student_id = ?", student.ID).
		Order("requested_at DESC").Find(&requests).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch ID card requests",
		})
	}

	return c.JSON(fiber.Map{
		"requests": requests,
		"count":    len(requests),
	})
}

// UpdateIDCardStatus advances an ID card request through production (staff).
// Reaching ready_for_pickup notifies the student.
func (hc *HostelController) UpdateIDCardStatus(c *fiber.Ctx) error {
	requestID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request ID",
		})
	}

	var req struct {
		Status             string `json:"status"`
		CollectionLocation string `json:"collection_location"`
		Remarks            string `json:"remarks"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	target := models.IDCardStatus(req.Status)

	var request models.IDCardRequest
	if err := database.DB.First(&request, uint(requestID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "ID card request not found",
		})
	}
	if !models.CanTransitionIDCard(request.Status, target) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "Request cannot move from status " + string(request.Status) + " to " + req.Status,
		})
	}

	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	now := time.Now()
	updates := map[string]interface{}{"status": target}
	if req.Remarks != "" {
		updates["remarks"] = req.Remarks
	}
	switch target {
	case models.IDCardApproved:
		updates["approved_at"] = now
		updates["approved_by"] = user.ID
	case models.IDCardPrinting:
		updates["printed_at"] = now
	case models.IDCardReady:
		updates["ready_at"] = now
		if req.CollectionLocation != "" {
			updates["collection_location"] = req.CollectionLocation
		}
	case models.IDCardCollected:
		updates["collected_at"] = now
	}
	if err := database.DB.Model(&request).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update ID card request",
		})
	}

	middleware.LogActivity(c, "UPDATE", "id_card_requests", request.ID, fiber.Map{
		"status": req.Status,
	})

	if target == models.IDCardReady {
		var student models.Student
		if err := database.DB.First(&student, request.StudentID).Error; err == nil {
			go func(userID uint, location string) {
				svc := notifications.NewService()
				if err := svc.EnqueueOrCreate([]uint{userID}, notifications.IDCardReadyForPickup(location)); err != nil {
					logrus.WithError(err).Warn("failed to dispatch ID card notification")
				}
			}(student.UserID, req.CollectionLocation)
		}
	}

	return c.JSON(fiber.Map{
		"message": "ID card request updated",
		"request": request,
	})
}
