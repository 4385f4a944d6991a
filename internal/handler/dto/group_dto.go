package dto

import (
	"time"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/handler/helper"
)

// QuestionResponse представляет вопрос в формате для ответа клиенту.
// Правильный ответ в DTO не попадает.
type QuestionResponse struct {
	ID        uint                    `json:"id"`
	GroupID   uint                    `json:"group_id"`
	Kind      string                  `json:"kind"`
	Text      string                  `json:"text"`
	Options   []helper.QuestionOption `json:"options,omitempty"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

// GroupResponse представляет группу вопросов в формате для ответа клиенту
type GroupResponse struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	QuestionCount int                `json:"question_count"`
	Questions     []QuestionResponse `json:"questions,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:        q.ID,
		GroupID:   q.GroupID,
		Kind:      q.Kind,
		Text:      q.Text,
		Options:   helper.ConvertOptionsToObjects(q.Options),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

// NewGroupResponse создает DTO для группы вопросов
func NewGroupResponse(group *entity.QuestionGroup, includeQuestions bool) *GroupResponse {
	if group == nil {
		return nil
	}

	var questionsDTO []QuestionResponse
	if includeQuestions {
		questionsDTO = make([]QuestionResponse, len(group.Questions))
		for i := range group.Questions {
			questionsDTO[i] = NewQuestionResponse(&group.Questions[i])
		}
	}

	return &GroupResponse{
		ID:            group.ID,
		Name:          group.Name,
		QuestionCount: len(group.Questions),
		Questions:     questionsDTO,
		CreatedAt:     group.CreatedAt,
		UpdatedAt:     group.UpdatedAt,
	}
}

// NewListGroupResponse создает слайс DTO для списка групп
func NewListGroupResponse(groups []entity.QuestionGroup) []*GroupResponse {
	list := make([]*GroupResponse, len(groups))
	for i := range groups {
		list[i] = NewGroupResponse(&groups[i], false)
	}
	return list
}
