package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/handler/dto"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
	"github.com/yourusername/quizhub-api/internal/service"
)

// GroupHandler обрабатывает запросы, связанные с группами вопросов
type GroupHandler struct {
	groupService *service.GroupService
}

// NewGroupHandler создает новый обработчик групп вопросов
func NewGroupHandler(groupService *service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// CreateGroupRequest представляет запрос на создание группы
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=3,max=100"`
}

// CreateGroup обрабатывает запрос на создание группы вопросов
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.CreateGroup(req.Name)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewGroupResponse(group, false))
}

// GetGroup возвращает группу вместе с ее вопросами
func (h *GroupHandler) GetGroup(c *gin.Context) {
	groupID := c.MustGet("groupID").(uint) // Получаем из контекста

	group, err := h.groupService.GetGroupWithQuestions(groupID)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGroupResponse(group, true))
}

// ListGroups возвращает список групп с пагинацией
func (h *GroupHandler) ListGroups(c *gin.Context) {
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}

	groups, err := h.groupService.ListGroups(page, pageSize)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewListGroupResponse(groups))
}

// RenameGroupRequest представляет запрос на переименование группы
type RenameGroupRequest struct {
	Name string `json:"name" binding:"required,min=3,max=100"`
}

// RenameGroup обрабатывает запрос на переименование группы
func (h *GroupHandler) RenameGroup(c *gin.Context) {
	groupID := c.MustGet("groupID").(uint)

	var req RenameGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.RenameGroup(groupID, req.Name)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewGroupResponse(group, false))
}

// DeleteGroup обрабатывает запрос на удаление группы
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	groupID := c.MustGet("groupID").(uint)

	if err := h.groupService.DeleteGroup(groupID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deleted successfully"})
}

// QuestionRequest представляет один вопрос в запросе на добавление
type QuestionRequest struct {
	Kind          string   `json:"kind" binding:"required,oneof=multiple_choice numerical"`
	Text          string   `json:"text" binding:"required,min=3,max=500"`
	Options       []string `json:"options" binding:"omitempty,max=10,dive,max=200"`
	CorrectOption string   `json:"correct_option"`
	CorrectNumber float64  `json:"correct_number"`
}

func (r *QuestionRequest) toEntity() entity.Question {
	return entity.Question{
		Kind:          r.Kind,
		Text:          r.Text,
		Options:       entity.StringArray(r.Options),
		CorrectOption: r.CorrectOption,
		CorrectNumber: r.CorrectNumber,
	}
}

// AddQuestionsRequest представляет запрос на добавление вопросов в группу
type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" binding:"required,min=1,max=100,dive"`
}

// AddQuestions обрабатывает пакетное добавление вопросов в группу
func (h *GroupHandler) AddQuestions(c *gin.Context) {
	groupID := c.MustGet("groupID").(uint)

	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]entity.Question, len(req.Questions))
	for i := range req.Questions {
		questions[i] = req.Questions[i].toEntity()
	}

	if err := h.groupService.AddQuestions(groupID, questions); err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Questions added successfully",
		"count":   len(questions),
	})
}

// UpdateQuestion обрабатывает обновление вопроса
func (h *GroupHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updated := req.toEntity()
	question, err := h.groupService.UpdateQuestion(questionID, &updated)
	if err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion обрабатывает удаление вопроса
func (h *GroupHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.groupService.DeleteQuestion(questionID); err != nil {
		h.handleGroupError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Question deleted successfully"})
}

// handleGroupError обрабатывает ошибки сервисов групп и отправляет соответствующий HTTP ответ
func (h *GroupHandler) handleGroupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("ERROR: Internal server error in GroupHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
