package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kos-manager/internal/models"

	"gorm.io/gorm"
)

// TenantService manages tenants and keeps room occupancy in step with them.
// Every operation that changes tenancy runs in one transaction together with
// the room status update.
type TenantService struct {
	DB    *gorm.DB
	Clock Clock
}

type TenantInput struct {
	Name      string
	Phone     string
	Email     string
	StartDate time.Time
	RoomID    uint
}

type TenantFilter struct {
	ActiveOnly bool
	Page       int
	PerPage    int
}

// TenantDetail is a tenant with its payment totals.
type TenantDetail struct {
	Tenant          models.Tenant
	TotalPaidCent   int64
	OutstandingCent int64
}

const tenantsPerPage = 10

func (in *TenantInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" || len(in.Name) > 100 {
		return invalid("name", "name is required (max 100 characters)")
	}
	if len(in.Phone) > 20 {
		return invalid("phone", "phone is too long (max 20 characters)")
	}
	if err := validate.Var(in.Email, "omitempty,email,max=120"); err != nil {
		return invalid("email", "invalid email address")
	}
	if in.StartDate.IsZero() {
		return invalid("start_date", "start date is required")
	}
	if in.RoomID == 0 {
		return invalid("room_id", "room is required")
	}
	return nil
}

func ownedTenant(tx *gorm.DB, userID, id uint) (*models.Tenant, error) {
	var t models.Tenant
	if err := tx.Preload("Room").
		Where("id = ? AND room_id IN (?)", id, ownedRoomIDs(tx, userID)).
		First(&t).Error; err != nil {
		return nil, notFound(err, "tenant")
	}
	return &t, nil
}

func ownedRoom(tx *gorm.DB, userID, id uint) (*models.Room, error) {
	var r models.Room
	if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&r).Error; err != nil {
		return nil, notFound(err, "room")
	}
	return &r, nil
}

// List returns tenants ordered by name, active ones only unless f.ActiveOnly is false.
func (s *TenantService) List(ctx context.Context, userID uint, f TenantFilter) (Page[models.Tenant], error) {
	page, perPage := normalizePage(f.Page, f.PerPage, tenantsPerPage)
	db := s.DB.WithContext(ctx)

	base := db.Model(&models.Tenant{}).Where("room_id IN (?)", ownedRoomIDs(db, userID))
	if f.ActiveOnly {
		base = base.Where("is_active = ?", true)
	}

	out, err := paginate[models.Tenant](base, page, perPage, "name ASC, id ASC", "Room")
	if err != nil {
		return out, fmt.Errorf("list tenants: %w", err)
	}
	return out, nil
}

// Active returns every active tenant of the user, for payment forms.
func (s *TenantService) Active(ctx context.Context, userID uint) ([]models.Tenant, error) {
	db := s.DB.WithContext(ctx)
	var tenants []models.Tenant
	if err := db.Preload("Room").
		Where("room_id IN (?) AND is_active = ?", ownedRoomIDs(db, userID), true).
		Order("name ASC").
		Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("list active tenants: %w", err)
	}
	return tenants, nil
}

// Get loads a tenant whose room belongs to userID.
func (s *TenantService) Get(ctx context.Context, userID, id uint) (*models.Tenant, error) {
	return ownedTenant(s.DB.WithContext(ctx), userID, id)
}

// Detail loads a tenant with paid and pending totals.
func (s *TenantService) Detail(ctx context.Context, userID, id uint) (*TenantDetail, error) {
	db := s.DB.WithContext(ctx)
	t, err := ownedTenant(db, userID, id)
	if err != nil {
		return nil, err
	}
	out := &TenantDetail{Tenant: *t}

	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_cent), 0)").
		Where("tenant_id = ? AND status = ?", t.ID, models.PaymentPaid).
		Scan(&out.TotalPaidCent).Error; err != nil {
		return nil, fmt.Errorf("sum paid: %w", err)
	}
	if err := db.Model(&models.Payment{}).
		Select("COALESCE(SUM(amount_cent), 0)").
		Where("tenant_id = ? AND status = ?", t.ID, models.PaymentPending).
		Scan(&out.OutstandingCent).Error; err != nil {
		return nil, fmt.Errorf("sum outstanding: %w", err)
	}
	return out, nil
}

// Create assigns a new tenant to an available room and marks the room occupied.
func (s *TenantService) Create(ctx context.Context, userID uint, in TenantInput) (*models.Tenant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var tenant models.Tenant
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		room, err := ownedRoom(tx, userID, in.RoomID)
		if err != nil {
			return err
		}
		if room.Status != models.RoomAvailable {
			return ErrRoomUnavailable
		}

		tenant = models.Tenant{
			RoomID:    room.ID,
			Name:      in.Name,
			Phone:     in.Phone,
			Email:     in.Email,
			StartDate: DateOf(in.StartDate),
			IsActive:  true,
		}
		if err := tx.Create(&tenant).Error; err != nil {
			return fmt.Errorf("create tenant: %w", err)
		}
		if err := syncRoomStatus(tx, room.ID); err != nil {
			return err
		}
		room.Status = models.RoomOccupied
		tenant.Room = room
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Update edits a tenant. Moving an active tenant frees the old room and
// occupies the new one, which must be available.
func (s *TenantService) Update(ctx context.Context, userID, id uint, in TenantInput) (*models.Tenant, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var tenant *models.Tenant
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := ownedTenant(tx, userID, id)
		if err != nil {
			return err
		}
		oldRoomID := t.RoomID

		if in.RoomID != oldRoomID {
			room, err := ownedRoom(tx, userID, in.RoomID)
			if err != nil {
				return err
			}
			if t.IsActive && room.Status != models.RoomAvailable {
				return ErrRoomUnavailable
			}
		}

		if err := tx.Model(&models.Tenant{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"name":       in.Name,
			"phone":      in.Phone,
			"email":      in.Email,
			"start_date": DateOf(in.StartDate),
			"room_id":    in.RoomID,
		}).Error; err != nil {
			return fmt.Errorf("update tenant: %w", err)
		}

		if in.RoomID != oldRoomID {
			if err := syncRoomStatus(tx, oldRoomID); err != nil {
				return err
			}
			if err := syncRoomStatus(tx, in.RoomID); err != nil {
				return err
			}
		}

		tenant, err = ownedTenant(tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// Deactivate ends a tenancy today and frees the room.
func (s *TenantService) Deactivate(ctx context.Context, userID, id uint) (*models.Tenant, error) {
	var tenant *models.Tenant
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := ownedTenant(tx, userID, id)
		if err != nil {
			return err
		}
		if !t.IsActive {
			return ErrTenantInactive
		}

		end := s.Clock.Today()
		if err := tx.Model(&models.Tenant{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"is_active": false,
			"end_date":  end,
		}).Error; err != nil {
			return fmt.Errorf("deactivate tenant: %w", err)
		}
		if err := syncRoomStatus(tx, t.RoomID); err != nil {
			return err
		}

		tenant, err = ownedTenant(tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tenant, nil
}

// Delete removes a tenant and its payments, freeing the room if it was active.
func (s *TenantService) Delete(ctx context.Context, userID, id uint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := ownedTenant(tx, userID, id)
		if err != nil {
			return err
		}
		if err := tx.Where("tenant_id = ?", t.ID).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("delete payments: %w", err)
		}
		if err := tx.Delete(&models.Tenant{}, t.ID).Error; err != nil {
			return fmt.Errorf("delete tenant: %w", err)
		}
		return syncRoomStatus(tx, t.RoomID)
	})
}
