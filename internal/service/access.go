package service

import "github.com/ignatzorin/engagement-backend/internal/models"

// canAccess: клиент проекта, назначенный фрилансер или администратор.
func canAccess(p models.Principal, e *models.Engagement) bool {
	return p.IsAdmin() || e.IsParticipant(p.ID)
}

// canManage: клиент проекта или администратор.
func canManage(p models.Principal, e *models.Engagement) bool {
	return p.IsAdmin() || (p.Role == models.RoleClient && e.ClientID == p.ID)
}
