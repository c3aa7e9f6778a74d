package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go-courier-booking-backend/internal/domain"
	"go-courier-booking-backend/internal/usecase"
	"go-courier-booking-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init()
}

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}
func (m *MockUserRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, roles []domain.Role, page, pageSize int) ([]domain.Profile, int64, error) {
	args := m.Called(ctx, roles, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Profile), args.Get(1).(int64), args.Error(2)
}

type MockTimeSlotRepo struct {
	mock.Mock
}

func (m *MockTimeSlotRepo) Create(ctx context.Context, slot *domain.TimeSlot) error {
	return m.Called(ctx, slot).Error(0)
}
func (m *MockTimeSlotRepo) GetByID(ctx context.Context, id string) (*domain.TimeSlot, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TimeSlot), args.Error(1)
}
func (m *MockTimeSlotRepo) ListAvailable(ctx context.Context, dayOfWeek int) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}
func (m *MockTimeSlotRepo) ListByCourier(ctx context.Context, courierID string) ([]domain.TimeSlot, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TimeSlot), args.Error(1)
}
func (m *MockTimeSlotRepo) SetBooked(ctx context.Context, id string, booked bool) error {
	return m.Called(ctx, id, booked).Error(0)
}
func (m *MockTimeSlotRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockBookingRepo) CountAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockTaskRepo struct {
	mock.Mock
}

func (m *MockTaskRepo) Create(ctx context.Context, task *domain.Task) error {
	return m.Called(ctx, task).Error(0)
}
func (m *MockTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}
func (m *MockTaskRepo) ListByCourier(ctx context.Context, courierID string) ([]domain.Task, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Task), args.Error(1)
}
func (m *MockTaskRepo) UpdateStatus(ctx context.Context, id string, status domain.TaskStatus) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockTaskRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminStats), args.Error(1)
}

type MockSubjectDeleter struct {
	mock.Mock
}

func (m *MockSubjectDeleter) DeleteUser(ctx context.Context, subjectID string) error {
	return m.Called(ctx, subjectID).Error(0)
}

func ctxAs(id string, role domain.Role) context.Context {
	ctx := context.WithValue(context.Background(), domain.KeyUserID, id)
	return context.WithValue(ctx, domain.KeyUserRole, string(role))
}

func TestBookingOwnership(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	slotRepo := new(MockTimeSlotRepo)
	uc := usecase.NewBookingUsecase(bookingRepo, slotRepo)

	booking := &domain.Booking{ID: "b1", UserID: "user1", TimeSlotID: "slot1"}

	t.Run("Should fail when cancelling another user's booking", func(t *testing.T) {
		bookingRepo.On("GetByID", mock.Anything, "b1").Return(booking, nil)

		err := uc.Cancel(ctxAs("user2", domain.RoleUser), "b1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "another user's booking")
	})

	t.Run("Admin may cancel anyone's booking", func(t *testing.T) {
		bookingRepo.On("GetByID", mock.Anything, "b1").Return(booking, nil)
		bookingRepo.On("Delete", mock.Anything, "b1").Return(nil)

		err := uc.Cancel(ctxAs("admin1", domain.RoleAdmin), "b1")
		assert.NoError(t, err)
	})

	t.Run("Should fail safely when context has no identity", func(t *testing.T) {
		err := uc.Cancel(context.Background(), "b1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Authentication required")
	})
}

func TestBookingDoubleBook(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	slotRepo := new(MockTimeSlotRepo)
	uc := usecase.NewBookingUsecase(bookingRepo, slotRepo)

	slotRepo.On("GetByID", mock.Anything, "taken").
		Return(&domain.TimeSlot{ID: "taken", CourierID: "c1", IsBooked: true}, nil)

	_, err := uc.Book(ctxAs("user1", domain.RoleUser), "taken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already booked")
	bookingRepo.AssertNotCalled(t, "Create")
}

func TestBookingRoleGate(t *testing.T) {
	uc := usecase.NewBookingUsecase(new(MockBookingRepo), new(MockTimeSlotRepo))

	_, err := uc.Book(ctxAs("c1", domain.RoleCourier), "slot1")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "user access required")
}

func TestTimeSlotValidation(t *testing.T) {
	slotRepo := new(MockTimeSlotRepo)
	uc := usecase.NewTimeSlotUsecase(slotRepo)
	ctx := ctxAs("c1", domain.RoleCourier)

	t.Run("Rejects out-of-range day", func(t *testing.T) {
		_, err := uc.Add(ctx, &domain.TimeSlot{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"})
		assert.Error(t, err)
	})

	t.Run("Rejects inverted window", func(t *testing.T) {
		_, err := uc.Add(ctx, &domain.TimeSlot{DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00"})
		assert.Error(t, err)
	})

	t.Run("Stamps identity and id on create", func(t *testing.T) {
		slotRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.TimeSlot")).Return(nil)

		slot, err := uc.Add(ctx, &domain.TimeSlot{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"})
		require.NoError(t, err)
		assert.Equal(t, "c1", slot.CourierID)
		assert.NotEmpty(t, slot.ID)
		assert.False(t, slot.IsBooked)
	})

	t.Run("Refuses to remove a booked slot", func(t *testing.T) {
		slotRepo.On("GetByID", mock.Anything, "busy").
			Return(&domain.TimeSlot{ID: "busy", CourierID: "c1", IsBooked: true}, nil)

		err := uc.Remove(ctx, "busy")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "active booking")
	})
}

func TestTaskAssignment(t *testing.T) {
	taskRepo := new(MockTaskRepo)
	userRepo := new(MockUserRepo)
	uc := usecase.NewTaskUsecase(taskRepo, userRepo)
	adminCtx := ctxAs("a1", domain.RoleAdmin)

	t.Run("Only admins assign", func(t *testing.T) {
		_, err := uc.Assign(ctxAs("u1", domain.RoleUser), &domain.Task{Title: "x", CourierID: "c1"})
		assert.Error(t, err)
	})

	t.Run("Target must be a courier", func(t *testing.T) {
		userRepo.On("GetByID", mock.Anything, "u1").
			Return(&domain.Profile{ID: "u1", Role: domain.RoleUser}, nil)

		_, err := uc.Assign(adminCtx, &domain.Task{Title: "Deliver parcel", CourierID: "u1"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "only be assigned to couriers")
	})

	t.Run("Defaults priority and status", func(t *testing.T) {
		userRepo.On("GetByID", mock.Anything, "c1").
			Return(&domain.Profile{ID: "c1", Role: domain.RoleCourier}, nil)
		taskRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

		task, err := uc.Assign(adminCtx, &domain.Task{Title: "Deliver parcel", CourierID: "c1"})
		require.NoError(t, err)
		assert.Equal(t, domain.PriorityMedium, task.Priority)
		assert.Equal(t, domain.TaskPending, task.Status)
	})

	t.Run("Courier cannot touch another courier's task", func(t *testing.T) {
		taskRepo.On("GetByID", mock.Anything, "t1").
			Return(&domain.Task{ID: "t1", CourierID: "c1"}, nil)

		err := uc.UpdateStatus(ctxAs("c2", domain.RoleCourier), "t1", domain.TaskCompleted)
		assert.Error(t, err)
	})
}

func TestAdminDeleteUser(t *testing.T) {
	t.Run("Missing profile row still deletes the subject", func(t *testing.T) {
		adminRepo := new(MockAdminRepo)
		userRepo := new(MockUserRepo)
		subjects := new(MockSubjectDeleter)
		uc := usecase.NewAdminUsecase(adminRepo, userRepo, subjects)

		userRepo.On("Delete", mock.Anything, "ghost").Return(pgx.ErrNoRows)
		subjects.On("DeleteUser", mock.Anything, "ghost").Return(nil)

		err := uc.DeleteUser(ctxAs("a1", domain.RoleAdmin), "ghost")
		assert.NoError(t, err)
		subjects.AssertCalled(t, "DeleteUser", mock.Anything, "ghost")
	})

	t.Run("Failed subject delete is reported", func(t *testing.T) {
		adminRepo := new(MockAdminRepo)
		userRepo := new(MockUserRepo)
		subjects := new(MockSubjectDeleter)
		uc := usecase.NewAdminUsecase(adminRepo, userRepo, subjects)

		userRepo.On("Delete", mock.Anything, "u1").Return(nil)
		subjects.On("DeleteUser", mock.Anything, "u1").Return(errors.New("gotrue 503"))

		err := uc.DeleteUser(ctxAs("a1", domain.RoleAdmin), "u1")
		assert.Error(t, err)
	})

	t.Run("Non-admin is rejected before any deletion", func(t *testing.T) {
		adminRepo := new(MockAdminRepo)
		userRepo := new(MockUserRepo)
		subjects := new(MockSubjectDeleter)
		uc := usecase.NewAdminUsecase(adminRepo, userRepo, subjects)

		err := uc.DeleteUser(ctxAs("u1", domain.RoleUser), "victim")
		assert.Error(t, err)
		userRepo.AssertNotCalled(t, "Delete")
		subjects.AssertNotCalled(t, "DeleteUser")
	})
}

func TestProfileIDOR(t *testing.T) {
	userRepo := new(MockUserRepo)
	uc := usecase.NewProfileUsecase(userRepo)

	t.Run("Should fail when Context UserID does not match Argument ID", func(t *testing.T) {
		_, err := uc.Update(ctxAs("user1", domain.RoleUser), &domain.Profile{ID: "user2", FullName: "X"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "another user's profile")
	})

	t.Run("Should fail safely when Context UserID is nil", func(t *testing.T) {
		_, err := uc.Update(context.Background(), &domain.Profile{ID: "user1", FullName: "X"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Authentication required")
	})
}
