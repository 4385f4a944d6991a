package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/quizhub-api/internal/domain/entity"
	"github.com/yourusername/quizhub-api/internal/domain/repository"
	apperrors "github.com/yourusername/quizhub-api/internal/pkg/errors"
)

// GroupService предоставляет методы для работы с группами вопросов
// и их вопросами
type GroupService struct {
	groupRepo    repository.QuestionGroupRepository
	questionRepo repository.QuestionRepository
	sessionRepo  repository.GameSessionRepository
}

// NewGroupService создает новый сервис групп вопросов
func NewGroupService(
	groupRepo repository.QuestionGroupRepository,
	questionRepo repository.QuestionRepository,
	sessionRepo repository.GameSessionRepository,
) *GroupService {
	return &GroupService{
		groupRepo:    groupRepo,
		questionRepo: questionRepo,
		sessionRepo:  sessionRepo,
	}
}

// CreateGroup создает новую группу вопросов
func (s *GroupService) CreateGroup(name string) (*entity.QuestionGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", apperrors.ErrValidation)
	}

	group := &entity.QuestionGroup{Name: name}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	log.Printf("[GroupService] Создана группа вопросов #%d '%s'", group.ID, group.Name)
	return group, nil
}

// GetGroupByID возвращает группу по ID
func (s *GroupService) GetGroupByID(groupID uint) (*entity.QuestionGroup, error) {
	return s.groupRepo.GetByID(groupID)
}

// GetGroupWithQuestions возвращает группу вместе с ее вопросами
func (s *GroupService) GetGroupWithQuestions(groupID uint) (*entity.QuestionGroup, error) {
	return s.groupRepo.GetWithQuestions(groupID)
}

// ListGroups возвращает список групп с пагинацией
func (s *GroupService) ListGroups(page, pageSize int) ([]entity.QuestionGroup, error) {
	offset := (page - 1) * pageSize
	return s.groupRepo.List(pageSize, offset)
}

// RenameGroup переименовывает группу
func (s *GroupService) RenameGroup(groupID uint, name string) (*entity.QuestionGroup, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", apperrors.ErrValidation)
	}

	group, err := s.groupRepo.GetByID(groupID)
	if err != nil {
		return nil, err
	}

	group.Name = name
	if err := s.groupRepo.Update(group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return group, nil
}

// DeleteGroup удаляет группу вместе с вопросами.
// Группа, на которую опирается активная сессия, не удаляется.
func (s *GroupService) DeleteGroup(groupID uint) error {
	if _, err := s.groupRepo.GetByID(groupID); err != nil {
		return err
	}

	_, activeCount, err := s.sessionRepo.ListWithFilters(repository.SessionFilters{
		Status:  entity.SessionStatusActive,
		GroupID: groupID,
	}, 1, 0)
	if err != nil {
		return fmt.Errorf("failed to check active sessions: %w", err)
	}
	if activeCount > 0 {
		return fmt.Errorf("%w: group #%d is used by an active session", apperrors.ErrConflict, groupID)
	}

	if err := s.groupRepo.Delete(groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	log.Printf("[GroupService] Группа #%d удалена", groupID)
	return nil
}

// AddQuestion добавляет вопрос в группу после валидации
func (s *GroupService) AddQuestion(groupID uint, question *entity.Question) (*entity.Question, error) {
	if _, err := s.groupRepo.GetByID(groupID); err != nil {
		return nil, err
	}

	question.GroupID = groupID
	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.questionRepo.Create(question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	log.Printf("[GroupService] В группу #%d добавлен вопрос #%d (%s)", groupID, question.ID, question.Kind)
	return question, nil
}

// AddQuestions добавляет пакет вопросов в группу.
// Невалидный вопрос отклоняет весь пакет.
func (s *GroupService) AddQuestions(groupID uint, questions []entity.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("%w: no questions provided", apperrors.ErrValidation)
	}

	if _, err := s.groupRepo.GetByID(groupID); err != nil {
		return err
	}

	for i := range questions {
		questions[i].GroupID = groupID
		if err := questions[i].Validate(); err != nil {
			return fmt.Errorf("%w: question #%d: %v", apperrors.ErrValidation, i+1, err)
		}
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		log.Printf("[GroupService] Ошибка при пакетной загрузке вопросов: %v", err)
		return fmt.Errorf("failed to create questions: %w", err)
	}

	log.Printf("[GroupService] В группу #%d добавлено %d вопросов", groupID, len(questions))
	return nil
}

// GetQuestionsByGroupID возвращает все вопросы группы
func (s *GroupService) GetQuestionsByGroupID(groupID uint) ([]entity.Question, error) {
	return s.questionRepo.GetByGroupID(groupID)
}

// UpdateQuestion обновляет вопрос группы
func (s *GroupService) UpdateQuestion(questionID uint, updated *entity.Question) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return nil, err
	}

	question.Kind = updated.Kind
	question.Text = updated.Text
	question.Options = updated.Options
	question.CorrectOption = updated.CorrectOption
	question.CorrectNumber = updated.CorrectNumber

	if err := question.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	if err := s.questionRepo.Update(question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	return question, nil
}

// DeleteQuestion удаляет вопрос из группы
func (s *GroupService) DeleteQuestion(questionID uint) error {
	if _, err := s.questionRepo.GetByID(questionID); err != nil {
		return err
	}
	return s.questionRepo.Delete(questionID)
}

// CountQuestions возвращает количество вопросов в группе
func (s *GroupService) CountQuestions(groupID uint) (int64, error) {
	count, err := s.questionRepo.CountByGroupID(groupID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return 0, err
	}
	return count, nil
}
