package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"receipt-ledger/internal/logger"
	"receipt-ledger/internal/models"
	"receipt-ledger/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BackupHandler 负责备份相关接口
type BackupHandler struct {
	DB         *gorm.DB
	EncryptKey string
	BackupDir  string
}

func NewBackupHandler(db *gorm.DB, encryptKey, backupDir string) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
	}
}

// backupData is the plaintext written (encrypted) into a backup file.
type backupData struct {
	UserID       uint                 `json:"user_id"`
	Created      time.Time            `json:"created"`
	Receipts     []models.Receipt     `json:"receipts"`
	Transactions []models.Transaction `json:"transactions"`
}

// snapshot loads receipts and transactions of userID concurrently.
func (h *BackupHandler) snapshot(ctx context.Context, userID uint) (*backupData, error) {
	data := &backupData{UserID: userID, Created: time.Now().UTC()}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return h.DB.WithContext(ctx).
			Where("created_by = ?", userID).
			Order("id ASC").
			Find(&data.Receipts).Error
	})
	g.Go(func() error {
		return h.DB.WithContext(ctx).
			Where("created_by = ?", userID).
			Order("id ASC").
			Find(&data.Transactions).Error
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return data, nil
}

// CreateBackup 生成当前用户的加密备份文件 POST /api/backups
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	log := logger.FromContext(c.Request.Context())

	data, err := h.snapshot(c.Request.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("backup snapshot")
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return
	}
	raw, err := json.Marshal(data)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "could not serialize backup")
		return
	}
	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, "could not encrypt backup")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		log.Error().Err(err).Str("dir", h.BackupDir).Msg("create backup dir")
		util.Error(c, http.StatusInternalServerError, "could not write backup")
		return
	}
	fileName := fmt.Sprintf("backup-%d-%s.bin", user.ID, uuid.NewString())
	filePath := filepath.Join(h.BackupDir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		log.Error().Err(err).Str("file", filePath).Msg("write backup")
		util.Error(c, http.StatusInternalServerError, "could not write backup")
		return
	}

	backup := models.Backup{
		UserID:   user.ID,
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(enc)),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return
	}

	log.Info().Uint("backup_id", backup.ID).
		Int("receipts", len(data.Receipts)).
		Int("transactions", len(data.Transactions)).
		Msg("backup created")
	util.Created(c, backup)
}

// ListBackups 列出当前用户已有的备份 GET /api/backups
func (h *BackupHandler) ListBackups(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	list := []models.Backup{}
	if err := h.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at DESC, id DESC").
		Find(&list).Error; err != nil {
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return
	}
	util.Success(c, list)
}

// ownedBackup loads backup :id of the current user or writes the error response.
func (h *BackupHandler) ownedBackup(c *gin.Context, userID uint) (*models.Backup, bool) {
	id, ok := pathID(c, "backup")
	if !ok {
		return nil, false
	}
	var backup models.Backup
	if err := h.DB.WithContext(c.Request.Context()).
		Where("id = ? AND user_id = ?", id, userID).
		First(&backup).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, "backup not found")
		} else {
			util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		}
		return nil, false
	}
	return &backup, true
}

// DownloadBackup 下载指定备份文件 GET /api/backups/:id/download
func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.ownedBackup(c, user.ID)
	if !ok {
		return
	}
	c.FileAttachment(backup.FilePath, backup.FileName)
}

// DeleteBackup 删除备份记录及对应文件（先删文件，再删记录）DELETE /api/backups/:id
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.ownedBackup(c, user.ID)
	if !ok {
		return
	}
	if err := os.Remove(backup.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.FromContext(c.Request.Context()).Warn().Err(err).Str("file", backup.FilePath).Msg("remove backup file")
	}
	if err := h.DB.WithContext(c.Request.Context()).Delete(backup).Error; err != nil {
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return
	}
	util.Success(c, "backup_deleted")
}

// RestoreBackup 从指定备份文件恢复当前用户的小票和收支记录 POST /api/backups/:id/restore
// 主键由数据库重新分配，收支记录的 receipt_id 按新小票 id 重新关联。
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	backup, ok := h.ownedBackup(c, user.ID)
	if !ok {
		return
	}
	log := logger.FromContext(c.Request.Context())

	encData, err := os.ReadFile(backup.FilePath)
	if err != nil {
		log.Error().Err(err).Str("file", backup.FilePath).Msg("read backup")
		util.Error(c, http.StatusInternalServerError, "could not read backup file")
		return
	}
	raw, err := util.DecryptAES(h.EncryptKey, encData)
	if err != nil {
		util.Error(c, http.StatusUnprocessableEntity, "backup file cannot be decrypted")
		return
	}
	var data backupData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusUnprocessableEntity, "backup file is corrupt")
		return
	}
	if data.UserID != 0 && data.UserID != user.ID {
		util.Error(c, http.StatusUnprocessableEntity, "backup belongs to another user")
		return
	}

	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("created_by = ?", user.ID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		if err := tx.Where("created_by = ?", user.ID).Delete(&models.Receipt{}).Error; err != nil {
			return err
		}

		newIDs := make(map[uint]uint, len(data.Receipts))
		for i := range data.Receipts {
			r := data.Receipts[i]
			oldID := r.ID
			r.ID = 0 // 让数据库重新分配主键
			r.CreatedBy = user.ID
			r.Expenses = nil
			if err := tx.Omit(clause.Associations).Create(&r).Error; err != nil {
				return err
			}
			newIDs[oldID] = r.ID
		}

		for i := range data.Transactions {
			t := data.Transactions[i]
			t.ID = 0
			t.CreatedBy = user.ID
			if t.ReceiptID != nil {
				if id, ok := newIDs[*t.ReceiptID]; ok {
					t.ReceiptID = &id
				} else {
					t.ReceiptID = nil
				}
			}
			if err := tx.Create(&t).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Uint("backup_id", backup.ID).Msg("restore backup")
		util.Error(c, http.StatusServiceUnavailable, "data unavailable, try again later")
		return
	}

	util.Success(c, gin.H{
		"receipts_count":     len(data.Receipts),
		"transactions_count": len(data.Transactions),
	})
}
