package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/shillien-project/portal/config"
	"github.com/shillien-project/portal/game/item"
	mw "github.com/shillien-project/portal/middleware"
	"github.com/shillien-project/portal/model"
)

// classes a new character may pick; race follows the class.
var startingClasses = map[string]string{
	"Human Fighter":   "Human",
	"Human Mystic":    "Human",
	"Elven Fighter":   "Elf",
	"Elven Mystic":    "Elf",
	"Dark Fighter":    "Dark Elf",
	"Dark Mystic":     "Dark Elf",
	"Orc Fighter":     "Orc",
	"Orc Mystic":      "Orc",
	"Dwarven Fighter": "Dwarf",
}

// CharacterHandler handles character REST endpoints.
type CharacterHandler struct {
	db    *gorm.DB
	items *item.Service
	game  config.GameConfig
}

// NewCharacterHandler creates a new CharacterHandler.
func NewCharacterHandler(db *gorm.DB, items *item.Service, game config.GameConfig) *CharacterHandler {
	return &CharacterHandler{db: db, items: items, game: game}
}

// List handles GET /api/characters.
func (h *CharacterHandler) List(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	var chars []model.Character
	if err := h.db.Where("account_id = ?", accountID).Find(&chars).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"characters": chars})
}

type createCharacterRequest struct {
	Name  string `json:"name"  binding:"required,min=1,max=32"`
	Class string `json:"class" binding:"required"`
}

// Create handles POST /api/characters. The starter inventory, starting
// Adena included, is granted in the same transaction as the character row.
func (h *CharacterHandler) Create(c *gin.Context) {
	accountID := mw.GetAccountID(c)

	var req createCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	race, ok := startingClasses[req.Class]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class"})
		return
	}

	var count int64
	if err := h.db.Model(&model.Character{}).Where("account_id = ?", accountID).
		Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if count >= int64(h.game.MaxCharacters) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max characters reached"})
		return
	}

	char := &model.Character{
		AccountID: accountID,
		Name:      req.Name,
		Class:     req.Class,
		Race:      race,
		Level:     1,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(char).Error; err != nil {
			return err
		}
		return h.items.GrantStarter(tx, char.ID)
	})
	if err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "character name already taken"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusCreated, char)
}

type deleteCharacterRequest struct {
	Password string `json:"password" binding:"required"`
}

// Delete handles DELETE /api/characters/:id. Deletion requires the
// account password and removes the character's inventory with it.
func (h *CharacterHandler) Delete(c *gin.Context) {
	accountID := mw.GetAccountID(c)
	charID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req deleteCharacterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password required"})
		return
	}

	var acc model.Account
	if err := h.db.First(&acc, accountID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong password"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND account_id = ?", charID, accountID).
			Delete(&model.Character{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("char_id = ?", charID).Delete(&model.ItemStack{}).Error
	})
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "character not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ownedCharacter verifies that charID belongs to accountID.
func ownedCharacter(db *gorm.DB, accountID, charID int64) (*model.Character, error) {
	var char model.Character
	if err := db.Where("id = ? AND account_id = ?", charID, accountID).
		First(&char).Error; err != nil {
		return nil, err
	}
	return &char, nil
}
