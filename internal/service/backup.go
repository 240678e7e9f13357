package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kos-manager/internal/models"
	"kos-manager/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrForeignBackup is returned when a snapshot belongs to another user.
var ErrForeignBackup = errors.New("backup belongs to another user")

// BackupService writes and restores encrypted snapshots of one user's data.
type BackupService struct {
	DB         *gorm.DB
	EncryptKey string
	Dir        string
	Clock      Clock
}

// snapshot is the plaintext content of a backup file.
type snapshot struct {
	Version  int              `json:"version"`
	UserID   uint             `json:"user_id"`
	Created  time.Time        `json:"created"`
	Rooms    []models.Room    `json:"rooms"`
	Tenants  []models.Tenant  `json:"tenants"`
	Payments []models.Payment `json:"payments"`
	Expenses []models.Expense `json:"expenses"`
}

// RestoreResult counts the restored records.
type RestoreResult struct {
	Rooms    int `json:"rooms"`
	Tenants  int `json:"tenants"`
	Payments int `json:"payments"`
	Expenses int `json:"expenses"`
}

const snapshotVersion = 1

func (s *BackupService) load(ctx context.Context, userID uint) (*snapshot, error) {
	db := s.DB.WithContext(ctx)
	snap := &snapshot{Version: snapshotVersion, UserID: userID, Created: s.Clock.now().UTC()}

	if err := db.Where("user_id = ?", userID).Order("id").Find(&snap.Rooms).Error; err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	if err := db.Where("room_id IN (?)", ownedRoomIDs(db, userID)).Order("id").Find(&snap.Tenants).Error; err != nil {
		return nil, fmt.Errorf("query tenants: %w", err)
	}
	if err := db.Where("room_id IN (?)", ownedRoomIDs(db, userID)).Order("id").Find(&snap.Payments).Error; err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	if err := db.Where("user_id = ?", userID).Order("id").Find(&snap.Expenses).Error; err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	return snap, nil
}

// Create writes an encrypted snapshot to Dir and records it.
func (s *BackupService) Create(ctx context.Context, userID uint) (*models.Backup, error) {
	snap, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	enc, err := util.EncryptAES(s.EncryptKey, raw)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}
	fileName := fmt.Sprintf("backup-%d-%s.bin", userID, uuid.New().String())
	filePath := filepath.Join(s.Dir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	b := models.Backup{
		UserID:   userID,
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(enc)),
	}
	if err := s.DB.WithContext(ctx).Create(&b).Error; err != nil {
		_ = os.Remove(filePath)
		return nil, fmt.Errorf("save backup: %w", err)
	}
	return &b, nil
}

func (s *BackupService) List(ctx context.Context, userID uint) ([]models.Backup, error) {
	var list []models.Backup
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return list, nil
}

func (s *BackupService) Get(ctx context.Context, userID, id uint) (*models.Backup, error) {
	var b models.Backup
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&b).Error; err != nil {
		return nil, notFound(err, "backup")
	}
	return &b, nil
}

// Delete removes the file first, then the record.
func (s *BackupService) Delete(ctx context.Context, userID, id uint) error {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := os.Remove(b.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove backup file: %w", err)
	}
	if err := s.DB.WithContext(ctx).Delete(&models.Backup{}, b.ID).Error; err != nil {
		return fmt.Errorf("delete backup: %w", err)
	}
	return nil
}

// Restore replaces the user's rooms, tenants, payments and expenses with the
// snapshot content in one transaction. Primary keys are reassigned.
func (s *BackupService) Restore(ctx context.Context, userID, id uint) (*RestoreResult, error) {
	b, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	enc, err := os.ReadFile(b.FilePath)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	raw, err := util.DecryptAES(s.EncryptKey, enc)
	if err != nil {
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse backup: %w", err)
	}
	if snap.UserID != 0 && snap.UserID != userID {
		return nil, ErrForeignBackup
	}

	res := &RestoreResult{}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned := ownedRoomIDs(tx, userID)
		if err := tx.Where("room_id IN (?)", owned).Delete(&models.Payment{}).Error; err != nil {
			return fmt.Errorf("clear payments: %w", err)
		}
		if err := tx.Where("room_id IN (?)", owned).Delete(&models.Tenant{}).Error; err != nil {
			return fmt.Errorf("clear tenants: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Room{}).Error; err != nil {
			return fmt.Errorf("clear rooms: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.Expense{}).Error; err != nil {
			return fmt.Errorf("clear expenses: %w", err)
		}

		// 旧主键 -> 新主键
		roomIDs := make(map[uint]uint, len(snap.Rooms))
		for _, r := range snap.Rooms {
			old := r.ID
			r.ID, r.UserID, r.User = 0, userID, nil
			if err := tx.Create(&r).Error; err != nil {
				return fmt.Errorf("restore room: %w", err)
			}
			roomIDs[old] = r.ID
			res.Rooms++
		}

		tenantIDs := make(map[uint]uint, len(snap.Tenants))
		for _, t := range snap.Tenants {
			newRoom, ok := roomIDs[t.RoomID]
			if !ok {
				continue
			}
			old, active := t.ID, t.IsActive
			t.ID, t.RoomID, t.Room = 0, newRoom, nil
			if err := tx.Create(&t).Error; err != nil {
				return fmt.Errorf("restore tenant: %w", err)
			}
			// is_active has a column default, so false is not written on insert
			if !active {
				if err := tx.Model(&models.Tenant{}).Where("id = ?", t.ID).Update("is_active", false).Error; err != nil {
					return fmt.Errorf("restore tenant: %w", err)
				}
			}
			tenantIDs[old] = t.ID
			res.Tenants++
		}

		for _, p := range snap.Payments {
			newRoom, okRoom := roomIDs[p.RoomID]
			newTenant, okTenant := tenantIDs[p.TenantID]
			if !okRoom || !okTenant {
				continue
			}
			p.ID, p.RoomID, p.TenantID, p.Room, p.Tenant = 0, newRoom, newTenant, nil, nil
			if err := tx.Create(&p).Error; err != nil {
				return fmt.Errorf("restore payment: %w", err)
			}
			res.Payments++
		}

		for _, e := range snap.Expenses {
			e.ID, e.UserID, e.User = 0, userID, nil
			if err := tx.Create(&e).Error; err != nil {
				return fmt.Errorf("restore expense: %w", err)
			}
			res.Expenses++
		}

		for _, newID := range roomIDs {
			if err := syncRoomStatus(tx, newID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
