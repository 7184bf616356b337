package rules

import "strings"

// Разрешения: две статические роли, супер-админ и менеджер проекта.

// IsSuperAdmin email входит в фиксированный список, без учета регистра.
func IsSuperAdmin(email string, allowList []string) bool {
	if email == "" {
		return false
	}
	for _, admin := range allowList {
		if strings.EqualFold(email, admin) {
			return true
		}
	}
	return false
}

// IsManager текущий субъект назначен менеджером проекта.
func IsManager(actorEmail, managerEmail string) bool {
	if actorEmail == "" || managerEmail == "" {
		return false
	}
	return strings.EqualFold(actorEmail, managerEmail)
}

// CanEdit право на мутации проекта. Анонимные сессии не редактируют никогда.
func CanEdit(actorEmail string, isAnonymous bool, managerEmail string, superAdmins []string) bool {
	if isAnonymous || actorEmail == "" {
		return false
	}
	return IsSuperAdmin(actorEmail, superAdmins) || IsManager(actorEmail, managerEmail)
}

// CanHardDelete, экспорт CSV и переопределение email фиксированных ролей -
// только супер-админ.
func CanHardDelete(actorEmail string, isAnonymous bool, superAdmins []string) bool {
	return !isAnonymous && IsSuperAdmin(actorEmail, superAdmins)
}
