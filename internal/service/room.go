package service

import (
	"context"
	"fmt"
	"strings"

	"kos-manager/internal/models"

	"gorm.io/gorm"
)

// RoomService manages a landlord's rooms.
type RoomService struct {
	DB *gorm.DB
}

type RoomInput struct {
	Number          string
	Description     string
	MonthlyRentCent int64
}

type RoomFilter struct {
	Status       string
	MinPriceCent *int64
	MaxPriceCent *int64
	Page         int
	PerPage      int
}

// RoomDetail is a room with its derived fields.
type RoomDetail struct {
	Room             models.Room
	CurrentTenant    *models.Tenant
	TotalRevenueCent int64
}

const roomsPerPage = 10

func (in *RoomInput) validate() error {
	in.Number = strings.TrimSpace(in.Number)
	if in.Number == "" || len(in.Number) > 20 {
		return invalid("number", "room number is required (max 20 characters)")
	}
	if in.MonthlyRentCent <= 0 {
		return invalid("monthly_rent", "monthly rent must be positive")
	}
	return nil
}

// List returns rooms ordered by number, optionally filtered by status and rent range.
func (s *RoomService) List(ctx context.Context, userID uint, f RoomFilter) (Page[models.Room], error) {
	page, perPage := normalizePage(f.Page, f.PerPage, roomsPerPage)

	base := s.DB.WithContext(ctx).Model(&models.Room{}).Where("user_id = ?", userID)
	if f.Status != "" {
		base = base.Where("status = ?", f.Status)
	}
	if f.MinPriceCent != nil {
		base = base.Where("monthly_rent_cent >= ?", *f.MinPriceCent)
	}
	if f.MaxPriceCent != nil {
		base = base.Where("monthly_rent_cent <= ?", *f.MaxPriceCent)
	}

	out, err := paginate[models.Room](base, page, perPage, "number ASC, id ASC")
	if err != nil {
		return out, fmt.Errorf("list rooms: %w", err)
	}
	return out, nil
}

// Get loads a room owned by userID.
func (s *RoomService) Get(ctx context.Context, userID, id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&room).Error; err != nil {
		return nil, notFound(err, "room")
	}
	return &room, nil
}

// Detail loads a room plus its active tenant and paid revenue.
func (s *RoomService) Detail(ctx context.Context, userID, id uint) (*RoomDetail, error) {
	room, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	db := s.DB.WithContext(ctx)

	out := &RoomDetail{Room: *room}

	var tenants []models.Tenant
	if err := db.Where("room_id = ? AND is_active = ?", room.ID, true).Order("id").Limit(1).Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("query tenant: %w", err)
	}
	if len(tenants) > 0 {
		out.CurrentTenant = &tenants[0]
	}

	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_cent), 0)").
		Where("room_id = ? AND status = ?", room.ID, models.PaymentPaid).
		Scan(&out.TotalRevenueCent).Error; err != nil {
		return nil, fmt.Errorf("sum revenue: %w", err)
	}
	return out, nil
}

// Create adds an available room.
func (s *RoomService) Create(ctx context.Context, userID uint, in RoomInput) (*models.Room, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	room := models.Room{
		UserID:          userID,
		Number:          in.Number,
		Description:     in.Description,
		MonthlyRentCent: in.MonthlyRentCent,
		Status:          models.RoomAvailable,
	}
	if err := s.DB.WithContext(ctx).Create(&room).Error; err != nil {
		return nil, fmt.Errorf("create room: %w", err)
	}
	return &room, nil
}

// Update edits descriptive fields. Status is owned by the tenancy operations.
func (s *RoomService) Update(ctx context.Context, userID, id uint, in RoomInput) (*models.Room, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	room, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(room).Updates(map[string]interface{}{
		"number":            in.Number,
		"description":       in.Description,
		"monthly_rent_cent": in.MonthlyRentCent,
	}).Error; err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	room.Number = in.Number
	room.Description = in.Description
	room.MonthlyRentCent = in.MonthlyRentCent
	return room, nil
}

// Delete removes a room with its tenants and payments.
func (s *RoomService) Delete(ctx context.Context, userID, id uint) error {
	room, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := tx.Where("room_id = ?", room.ID).Delete(&models.Tenant{}).Error; err != nil {
			return fmt.Errorf("delete tenants: %w", err)
		}
		if err := tx.Delete(room).Error; err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		return nil
	})
}

// syncRoomStatus sets the room's status from whether it has an active tenant.
// Every tenancy mutation calls it inside its transaction.
func syncRoomStatus(tx *gorm.DB, roomID uint) error {
	var active int64
	if err := tx.Model(&models.Tenant{}).
		Where("room_id = ? AND is_active = ?", roomID, true).
		Count(&active).Error; err != nil {
		return fmt.Errorf("count active tenants: %w", err)
	}
	status := models.RoomAvailable
	if active > 0 {
		status = models.RoomOccupied
	}
	if err := tx.Model(&models.Room{}).Where("id = ?", roomID).Update("status", status).Error; err != nil {
		return fmt.Errorf("update room status: %w", err)
	}
	return nil
}
