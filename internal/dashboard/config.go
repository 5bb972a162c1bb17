// Package dashboard maps a role to its declarative dashboard layout.
// Resolve is pure and total over the role enumeration: by the time it is
// called the route guard has already guaranteed a role is present, but an
// unknown role still yields a defined (empty) config rather than a panic.
package dashboard

import "github.com/sportmaps/sportmaps-server/internal/rbac"

// Stat is one headline figure on a dashboard.
type Stat struct {
	Title       string `json:"title"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon"`
	Trend       string `json:"trend,omitempty"`
}

// Activity is one entry in the recent-activity feed.
type Activity struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Time     string `json:"time"`
	Icon     string `json:"icon"`
}

// QuickAction is a shortcut button.
type QuickAction struct {
	Label string `json:"label"`
	Icon  string `json:"icon"`
	Href  string `json:"href"`
}

// Notification is an informational dashboard item.  The HTTP layer merges
// the caller's stored notifications into this slice.
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Time  string `json:"time,omitempty"`
}

// Config is the declarative dashboard definition for one role.
type Config struct {
	Role          rbac.Role      `json:"role"`
	Title         string         `json:"title"`
	Description   string         `json:"description"`
	Stats         []Stat         `json:"stats"`
	Activities    []Activity     `json:"activities"`
	QuickActions  []QuickAction  `json:"quick_actions"`
	Notifications []Notification `json:"notifications"`
}

// Resolve returns the dashboard configuration for a role.  Every valid
// role maps to a populated config; unknown roles map to an empty one.
func Resolve(role rbac.Role) Config {
	switch role {
	case rbac.RoleAthlete:
		return Config{
			Role:        role,
			Title:       "Mi Dashboard",
			Description: "Resumen de tu actividad deportiva",
			Stats: []Stat{
				{Title: "Equipos Activos", Value: "2", Description: "+1 desde el mes pasado", Icon: "trophy", Trend: "+50%"},
				{Title: "Próximos Eventos", Value: "3", Description: "Esta semana", Icon: "calendar"},
				{Title: "Partidos Jugados", Value: "12", Description: "Este mes", Icon: "target"},
				{Title: "Asistencia", Value: "85%", Description: "+2% desde el mes pasado", Icon: "bar-chart", Trend: "+2%"},
			},
			Activities: []Activity{
				{Title: "Entrenamiento - Fútbol Sub-17", Subtitle: "Cancha Principal", Time: "Hoy, 4:00 PM", Icon: "clock"},
				{Title: "Partido vs. Academia Deportiva", Subtitle: "Estadio Norte", Time: "Sábado, 10:00 AM", Icon: "trophy"},
			},
			QuickActions: []QuickAction{
				{Label: "Ver Calendario", Icon: "calendar", Href: "/calendar"},
				{Label: "Mis Estadísticas", Icon: "bar-chart", Href: "/stats"},
				{Label: "Equipos", Icon: "users", Href: "/teams"},
			},
			Notifications: []Notification{},
		}
	case rbac.RoleParent:
		return Config{
			Role:        role,
			Title:       "Panel de Padre/Madre",
			Description: "Sigue el progreso de tus hijos",
			Stats: []Stat{
				{Title: "Hijos Registrados", Value: "2", Description: "Atletas activos", Icon: "users"},
				{Title: "Próximas Actividades", Value: "5", Description: "Esta semana", Icon: "calendar"},
				{Title: "Asistencia Global", Value: "88%", Description: "Promedio familiar", Icon: "bar-chart", Trend: "+3%"},
				{Title: "Notificaciones", Value: "3", Description: "Sin leer", Icon: "bell"},
			},
			Activities: []Activity{
				{Title: "Ana María Pérez", Subtitle: "Fútbol Sub-15 • Entrenamiento", Time: "Hoy 4:00 PM", Icon: "users"},
				{Title: "Carlos Pérez", Subtitle: "Basketball U-12 • Partido", Time: "Sábado 10:00 AM", Icon: "trophy"},
			},
			QuickActions: []QuickAction{
				{Label: "Mis Hijos", Icon: "users", Href: "/children"},
				{Label: "Pagos", Icon: "credit-card", Href: "/payments"},
				{Label: "Calendario", Icon: "calendar", Href: "/calendar"},
			},
			Notifications: []Notification{},
		}
	case rbac.RoleCoach:
		return Config{
			Role:        role,
			Title:       "Panel de Entrenador",
			Description: "Gestiona tus equipos y jugadores",
			Stats: []Stat{
				{Title: "Equipos", Value: "3", Description: "Equipos activos", Icon: "users"},
				{Title: "Jugadores Totales", Value: "45", Description: "En todos los equipos", Icon: "activity"},
				{Title: "Sesiones Semanales", Value: "12", Description: "Entrenamientos programados", Icon: "calendar"},
				{Title: "Asistencia Promedio", Value: "91%", Description: "Último mes", Icon: "bar-chart", Trend: "+4%"},
			},
			Activities: []Activity{
				{Title: "Entrenamiento Sub-17", Subtitle: "Cancha Principal", Time: "Hoy, 4:00 PM", Icon: "clock"},
				{Title: "Evaluación física", Subtitle: "Gimnasio", Time: "Mañana, 9:00 AM", Icon: "activity"},
			},
			QuickActions: []QuickAction{
				{Label: "Crear Evento", Icon: "calendar-plus", Href: "/calendar/new"},
				{Label: "Mis Equipos", Icon: "users", Href: "/teams"},
				{Label: "Registrar Resultado", Icon: "trophy", Href: "/matches/new"},
			},
			Notifications: []Notification{},
		}
	case rbac.RoleSchool:
		return Config{
			Role:        role,
			Title:       "Panel de Academia",
			Description: "Administra tu academia deportiva",
			Stats: []Stat{
				{Title: "Estudiantes", Value: "230", Description: "Matriculados", Icon: "users"},
				{Title: "Programas", Value: "8", Description: "Activos", Icon: "building"},
				{Title: "Ingresos del Mes", Value: "$12.4k", Description: "+8% vs mes anterior", Icon: "trending-up", Trend: "+8%"},
				{Title: "Inscripciones Pendientes", Value: "6", Description: "Por aprobar", Icon: "bell"},
			},
			Activities: []Activity{
				{Title: "Nueva inscripción", Subtitle: "Fútbol Sub-13", Time: "Hace 2 horas", Icon: "users"},
				{Title: "Pago recibido", Subtitle: "Mensualidad marzo", Time: "Hace 5 horas", Icon: "credit-card"},
			},
			QuickActions: []QuickAction{
				{Label: "Estudiantes", Icon: "users", Href: "/students"},
				{Label: "Programas", Icon: "building", Href: "/programs"},
				{Label: "Finanzas", Icon: "trending-up", Href: "/finances"},
			},
			Notifications: []Notification{},
		}
	case rbac.RoleWellnessProfessional:
		return Config{
			Role:        role,
			Title:       "Panel de Bienestar",
			Description: "Acompaña a tus atletas asignados",
			Stats: []Stat{
				{Title: "Atletas Asignados", Value: "18", Description: "Activos", Icon: "heart"},
				{Title: "Citas esta Semana", Value: "7", Description: "Programadas", Icon: "calendar"},
				{Title: "Reportes Emitidos", Value: "4", Description: "Este mes", Icon: "file-text"},
				{Title: "Seguimientos", Value: "3", Description: "Pendientes", Icon: "bell"},
			},
			Activities: []Activity{
				{Title: "Evaluación nutricional", Subtitle: "Ana María Pérez", Time: "Hoy, 2:00 PM", Icon: "heart"},
				{Title: "Sesión de fisioterapia", Subtitle: "Carlos Gómez", Time: "Mañana, 10:00 AM", Icon: "activity"},
			},
			QuickActions: []QuickAction{
				{Label: "Agendar Cita", Icon: "calendar-plus", Href: "/calendar/new"},
				{Label: "Mis Atletas", Icon: "heart", Href: "/athletes"},
				{Label: "Nuevo Reporte", Icon: "file-text", Href: "/reports/new"},
			},
			Notifications: []Notification{},
		}
	case rbac.RoleStoreOwner:
		return Config{
			Role:        role,
			Title:       "Panel de Tienda",
			Description: "Gestiona tu tienda deportiva",
			Stats: []Stat{
				{Title: "Ventas del Mes", Value: "$3.2k", Description: "+12% vs mes anterior", Icon: "shopping-bag", Trend: "+12%"},
				{Title: "Pedidos", Value: "27", Description: "Este mes", Icon: "package"},
				{Title: "Productos", Value: "64", Description: "En catálogo", Icon: "tag"},
				{Title: "Stock Bajo", Value: "5", Description: "Requieren reposición", Icon: "bell"},
			},
			Activities: []Activity{
				{Title: "Pedido #1042", Subtitle: "Guayos talla 40", Time: "Hace 1 hora", Icon: "shopping-bag"},
				{Title: "Reseña nueva", Subtitle: "Balón profesional • 5 estrellas", Time: "Ayer", Icon: "star"},
			},
			QuickActions: []QuickAction{
				{Label: "Mis Productos", Icon: "tag", Href: "/products"},
				{Label: "Pedidos", Icon: "package", Href: "/orders"},
				{Label: "Finanzas", Icon: "trending-up", Href: "/finances"},
			},
			Notifications: []Notification{},
		}
	case rbac.RoleAdmin:
		return Config{
			Role:        role,
			Title:       "Panel de Administración",
			Description: "Supervisión global de SportMaps",
			Stats: []Stat{
				{Title: "Usuarios", Value: "1,204", Description: "Registrados", Icon: "users"},
				{Title: "Academias", Value: "37", Description: "Verificadas", Icon: "building"},
				{Title: "Actividad", Value: "98%", Description: "Disponibilidad del sistema", Icon: "activity"},
				{Title: "Reportes", Value: "2", Description: "Pendientes de revisión", Icon: "bell"},
			},
			Activities: []Activity{
				{Title: "Nueva academia registrada", Subtitle: "Academia Cóndores", Time: "Hace 3 horas", Icon: "building"},
				{Title: "Usuario reportado", Subtitle: "Revisión requerida", Time: "Ayer", Icon: "alert-triangle"},
			},
			QuickActions: []QuickAction{
				{Label: "Usuarios", Icon: "users", Href: "/admin/users"},
				{Label: "Sistema", Icon: "settings", Href: "/admin/system"},
			},
			Notifications: []Notification{},
		}
	}
	// Unknown role: defined, empty, never a panic.
	return Config{
		Role:          role,
		Stats:         []Stat{},
		Activities:    []Activity{},
		QuickActions:  []QuickAction{},
		Notifications: []Notification{},
	}
}
