package generator

import (
	"context"
	"fmt"

	"befit/fitness-app/internal/domain"
)

type dayTemplate struct {
	day       string
	focus     string
	exercises []domain.Exercise
}

var week = []dayTemplate{
	{"Lunes", "Tren Superior", []domain.Exercise{
		{Name: "Flexiones", Reps: "12", Rest: "60s", EstimatedTime: 180},
		{Name: "Remo con mancuerna", Reps: "10", Rest: "60s", EstimatedTime: 200},
		{Name: "Press militar", Reps: "10", Rest: "90s", EstimatedTime: 220},
		{Name: "Fondos en banco", Reps: "12", Rest: "60s", EstimatedTime: 180},
	}},
	{"Martes", "Cardio", []domain.Exercise{
		{Name: "Trote suave", Reps: "10 min", Rest: "30s", EstimatedTime: 600},
		{Name: "Saltos de tijera", Reps: "30", Rest: "30s", EstimatedTime: 150},
		{Name: "Burpees", Reps: "10", Rest: "45s", EstimatedTime: 180},
	}},
	{"Miércoles", "Tren Inferior", []domain.Exercise{
		{Name: "Sentadilla", Reps: "12", Rest: "90s", EstimatedTime: 240},
		{Name: "Zancadas", Reps: "10 por pierna", Rest: "60s", EstimatedTime: 240},
		{Name: "Puente de glúteo", Reps: "15", Rest: "45s", EstimatedTime: 180},
		{Name: "Elevación de talones", Reps: "20", Rest: "30s", EstimatedTime: 120},
	}},
	{"Jueves", "Core", []domain.Exercise{
		{Name: "Plancha", Reps: "40s", Rest: "30s", EstimatedTime: 150},
		{Name: "Crunch bicicleta", Reps: "20", Rest: "30s", EstimatedTime: 150},
		{Name: "Escaladores", Reps: "30s", Rest: "30s", EstimatedTime: 120},
	}},
	{"Viernes", "Cuerpo Completo", []domain.Exercise{
		{Name: "Peso muerto rumano", Reps: "10", Rest: "90s", EstimatedTime: 240},
		{Name: "Press de pecho", Reps: "10", Rest: "90s", EstimatedTime: 240},
		{Name: "Sentadilla goblet", Reps: "12", Rest: "60s", EstimatedTime: 200},
		{Name: "Dominadas asistidas", Reps: "hasta el fallo", Rest: "90s", EstimatedTime: 200},
	}},
	{"Sábado", "Movilidad", []domain.Exercise{
		{Name: "Estiramiento de cadera", Reps: "60s", Rest: "15s", EstimatedTime: 120},
		{Name: "Rotación torácica", Reps: "10", Rest: "15s", EstimatedTime: 90},
	}},
	{"Domingo", "Descanso Activo", []domain.Exercise{
		{Name: "Caminata", Reps: "30 min", Rest: "0s", EstimatedTime: 1800},
	}},
}

var goalTips = map[string][]string{
	GoalLoseFat:       {"Mantén un déficit calórico moderado.", "Prioriza el cardio de intensidad media."},
	GoalGainMuscle:    {"Aumenta la carga progresivamente.", "Consume suficiente proteína."},
	GoalMaintain:      {"Conserva la constancia semanal.", "Varía los ejercicios cada mes."},
	GoalImproveHealth: {"Duerme al menos 7 horas.", "Hidrátate durante el entrenamiento."},
}

var goalNames = map[string]string{
	GoalLoseFat:       "perder grasa corporal y definir músculo",
	GoalGainMuscle:    "ganar masa muscular y fuerza",
	GoalMaintain:      "mantener el peso actual y mejorar condición física",
	GoalImproveHealth: "mejorar la salud general y bienestar",
}

// TemplateGenerator builds a fixed seven day plan, scaling set counts with the
// activity level and the goal. It is deterministic.
type TemplateGenerator struct{}

func NewTemplateGenerator() *TemplateGenerator {
	return &TemplateGenerator{}
}

func (g *TemplateGenerator) GenerateRoutine(_ context.Context, profile Profile) (domain.RoutinePlan, error) {
	if err := profile.Validate(); err != nil {
		return domain.RoutinePlan{}, err
	}
	sets := setsFor(profile)

	plan := domain.RoutinePlan{
		Tips:       append([]string(nil), goalTips[profile.Goal]...),
		WeeklyGoal: fmt.Sprintf("Completar todas las sesiones para %s", goalNames[profile.Goal]),
	}
	for _, t := range week {
		day := domain.DayPlan{Day: t.day, Focus: t.focus}
		total := 0
		for _, ex := range t.exercises {
			ex.Sets = sets
			if t.focus == "Movilidad" || t.focus == "Descanso Activo" {
				ex.Sets = 1
			}
			total += ex.EstimatedTime
			day.Exercises = append(day.Exercises, ex)
		}
		minutes := (total + 59) / 60
		day.Duration = fmt.Sprintf("%d min", minutes)
		day.Calories = minutes * caloriesPerMinute(profile.Goal)
		plan.WeekPlan = append(plan.WeekPlan, day)
	}
	return plan, nil
}

// setsFor returns 2 sets for sedentary users up to 4 for very active ones,
// plus one for muscle gain, capped at 5.
func setsFor(p Profile) int {
	level := activityIndex(p.ActivityLevel)
	if level < 0 {
		level = 2
	}
	sets := 2 + level/2
	if p.Goal == GoalGainMuscle {
		sets++
	}
	if sets > 5 {
		sets = 5
	}
	return sets
}

func caloriesPerMinute(goal string) int {
	if goal == GoalLoseFat {
		return 8
	}
	return 6
}
