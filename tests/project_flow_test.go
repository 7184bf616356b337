package tests

import (
	"encoding/base64"
	"fmt"
	"testing"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/rules"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto"
	"github.com/raventech75/suivi-clients-sub000/tests/suite"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Сквозной сценарий: менеджер заводит проект, готовит галерею и доставку,
// клиент через портал отбирает фотографии, подписывает контракт и
// подтверждает получение.
func TestProjectLifecycle_HappyPath(t *testing.T) {
	ctx, st := suite.New(t)

	total := 3200.0
	deposit := 3200.0
	maxSelection := 2

	created, err := st.Projects.CreateProject(ctx, st.Manager, dto.CreateProjectRequest{
		ClientNames:   fmt.Sprintf("%s & %s", gofakeit.FirstName(), gofakeit.FirstName()),
		Email:         gofakeit.Email(),
		Phone:         gofakeit.Phone(),
		WeddingDate:   time.Now().AddDate(0, -1, 0),
		HasPhoto:      true,
		HasVideo:      true,
		ManagerName:   "Sophie",
		TotalPrice:    &total,
		DepositAmount: &deposit,
		MaxSelection:  &maxSelection,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.Code)

	projectID := created.ID

	// Подготовка со стороны студии
	_, err = st.Projects.SetGallery(ctx, st.Manager, projectID, dto.GalleryImagesRequest{
		Images: []dto.GalleryImageInput{
			{Filename: "img_001.jpg", URL: "https://cdn.example.com/img_001.jpg"},
			{Filename: "img_002.jpg", URL: "https://cdn.example.com/img_002.jpg"},
			{Filename: "img_003.jpg", URL: "https://cdn.example.com/img_003.jpg"},
		},
	})
	require.NoError(t, err)

	cover, err := st.Projects.UploadCover(ctx, st.Manager, projectID, "cover.jpg", "image/jpeg", []byte("jpeg-bytes"))
	require.NoError(t, err)
	assert.NotEmpty(t, cover.Project.CoverURL)

	link := "https://galerie.example.com/" + created.Code
	resp, err := st.Projects.UpdateProject(ctx, st.Manager, projectID, dto.UpdateProjectRequest{
		LinkPhoto: &link,
	})
	require.NoError(t, err)
	assert.Equal(t, link, resp.Project.LinkPhoto)

	_, err = st.Projects.UpdateStatus(ctx, st.Manager, projectID, dto.UpdateStatusRequest{
		Medium: "photo",
		Status: rules.StatusDelivered,
	})
	require.NoError(t, err)

	delivered, err := st.Projects.ListProjectsByPhotoStatus(ctx, []string{rules.StatusDelivered})
	require.NoError(t, err)
	require.Len(t, delivered.Projects, 1)
	assert.Equal(t, created.Code, delivered.Projects[0].Project.Code)

	// Клиент видит доставленные фотографии: оплачено полностью, ссылка есть
	portal, err := st.Portal.GetByCode(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, "Livré", portal.PhotoStatusLabel)
	assert.True(t, portal.Photo.Viewable)
	assert.Equal(t, link, portal.Photo.Link)
	assert.False(t, portal.Photo.PaymentBlocked)
	assert.Len(t, portal.Gallery, 3)

	// Отбор: квота на 2 изображения
	sel, err := st.Portal.ToggleSelection(ctx, created.Code, dto.ToggleSelectionRequest{Filename: "img_001.jpg"})
	require.NoError(t, err)
	require.NotNil(t, sel.Remaining)
	assert.Equal(t, 1, *sel.Remaining)

	_, err = st.Portal.ToggleSelection(ctx, created.Code, dto.ToggleSelectionRequest{Filename: "img_002.jpg"})
	require.NoError(t, err)

	_, err = st.Portal.ToggleSelection(ctx, created.Code, dto.ToggleSelectionRequest{Filename: "img_003.jpg"})
	require.ErrorIs(t, err, rules.ErrSelectionFull)

	require.NoError(t, st.Portal.ValidateSelection(ctx, created.Code))

	_, err = st.Portal.ToggleSelection(ctx, created.Code, dto.ToggleSelectionRequest{Filename: "img_001.jpg"})
	require.ErrorIs(t, err, rules.ErrSelectionValidated)

	// Подпись контракта: PNG улетает в хранилище, URL сохраняется
	signature := "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("png-signature-bytes"))
	signed, err := st.Portal.SignContract(ctx, created.Code, dto.SignContractRequest{SignatureData: signature})
	require.NoError(t, err)
	assert.True(t, signed.ContractSigned)
	assert.NotNil(t, signed.ContractSignedAt)
	assert.Len(t, st.Files.Objects, 2)

	// Подтверждение получения фотографий
	require.NoError(t, st.Portal.ConfirmDelivery(ctx, created.Code, "photo"))

	final, err := st.Projects.GetProject(ctx, projectID)
	require.NoError(t, err)
	assert.True(t, final.Project.PhotoDeliveryConfirmed)
	assert.True(t, final.Project.SelectionValidated)
	assert.ElementsMatch(t, []string{"img_001.jpg", "img_002.jpg"}, final.Project.SelectedImages)
	assert.NotEmpty(t, final.Project.History)
}

func TestProjectLifecycle_Messaging(t *testing.T) {
	ctx, st := suite.New(t)

	created, err := st.Projects.CreateProject(ctx, st.Manager, dto.CreateProjectRequest{
		ClientNames: "Léa & Paul",
		Email:       gofakeit.Email(),
		WeddingDate: time.Now().AddDate(0, 6, 0),
		HasPhoto:    true,
	})
	require.NoError(t, err)

	require.NoError(t, st.Projects.SendMessage(ctx, st.Manager, created.ID, dto.SendMessageRequest{
		Text: "Bonjour, votre galerie arrive bientôt",
	}))
	require.NoError(t, st.Projects.SendMessage(ctx, st.Manager, created.ID, dto.SendMessageRequest{
		Text:     "Note interne: relancer le labo",
		Internal: true,
	}))

	require.NoError(t, st.Portal.SendMessage(ctx, created.Code, dto.PortalMessageRequest{
		Text: "Merci, on a hâte!",
	}))

	// Клиент видит общий чат, внутренние заметки скрыты
	portal, err := st.Portal.GetByCode(ctx, created.Code)
	require.NoError(t, err)
	require.Len(t, portal.Messages, 2)
	assert.Equal(t, "admin", portal.Messages[0].Author)
	assert.Equal(t, "client", portal.Messages[1].Author)

	full, err := st.Projects.GetProject(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, full.Project.InternalMessages, 1)
	assert.Contains(t, full.Project.InternalMessages[0].Text, "labo")
}

func TestProjectLifecycle_PaymentGate(t *testing.T) {
	ctx, st := suite.New(t)

	total := 4000.0
	deposit := 1500.0

	created, err := st.Projects.CreateProject(ctx, st.Manager, dto.CreateProjectRequest{
		ClientNames:   "Emma & Lucas",
		Email:         gofakeit.Email(),
		WeddingDate:   time.Now().AddDate(0, -2, 0),
		HasPhoto:      true,
		TotalPrice:    &total,
		DepositAmount: &deposit,
	})
	require.NoError(t, err)

	link := "https://galerie.example.com/" + created.Code
	_, err = st.Projects.UpdateProject(ctx, st.Manager, created.ID, dto.UpdateProjectRequest{LinkPhoto: &link})
	require.NoError(t, err)

	_, err = st.Projects.UpdateStatus(ctx, st.Manager, created.ID, dto.UpdateStatusRequest{
		Medium: "photo",
		Status: rules.StatusDelivered,
	})
	require.NoError(t, err)

	// Остаток не оплачен: статус виден, ссылка скрыта
	portal, err := st.Portal.GetByCode(ctx, created.Code)
	require.NoError(t, err)
	assert.Equal(t, "Livré", portal.PhotoStatusLabel)
	assert.True(t, portal.Photo.PaymentBlocked)
	assert.False(t, portal.Photo.Viewable)
	assert.Empty(t, portal.Photo.Link)
}

func TestStats_AcrossLifecycle(t *testing.T) {
	ctx, st := suite.New(t)

	for i := 0; i < 3; i++ {
		_, err := st.Projects.CreateProject(ctx, st.Manager, dto.CreateProjectRequest{
			ClientNames: fmt.Sprintf("%s & %s", gofakeit.FirstName(), gofakeit.FirstName()),
			Email:       gofakeit.Email(),
			WeddingDate: time.Now().AddDate(0, 3+i, 0),
			HasPhoto:    true,
		})
		require.NoError(t, err)
	}

	stats, err := st.Stats.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalProjects)
	assert.Equal(t, 3, stats.ActiveProjects)
	assert.Equal(t, 0, stats.ArchivedProjects)
	assert.Equal(t, 3, stats.ByPhotoStatus[rules.StatusWaiting])

	csv, err := st.Stats.ExportCSV(ctx, st.SuperAdmin, false)
	require.NoError(t, err)
	assert.NotEmpty(t, csv)

	_, err = st.Stats.ExportCSV(ctx, st.Manager, false)
	require.Error(t, err)
}
