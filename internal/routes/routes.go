package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/JPostigo48/TI2project-backend/internal/handlers"
	"github.com/JPostigo48/TI2project-backend/internal/middleware"
	"github.com/JPostigo48/TI2project-backend/internal/models"
	"github.com/JPostigo48/TI2project-backend/internal/utils"
)

func SetupRouter(client *mongo.Client, dbName string, mailer utils.Mailer, log *zap.Logger) *mux.Router {
	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Server is healthy"))
	}).Methods("GET")

	userHandler := handlers.NewUserHandler(client, dbName)
	courseHandler := handlers.NewCourseHandler(client, dbName)
	sectionHandler := handlers.NewSectionHandler(client, dbName)
	semesterHandler := handlers.NewSemesterHandler(client, dbName)
	labHandler := handlers.NewLabHandler(client, dbName, mailer, log)
	enrollmentHandler := handlers.NewEnrollmentHandler(client, dbName)
	roomHandler := handlers.NewRoomHandler(client, dbName)
	studentHandler := handlers.NewStudentHandler(client, dbName)
	gradeHandler := handlers.NewGradeHandler(client, dbName)
	attendanceHandler := handlers.NewAttendanceHandler(client, dbName)

	admin := middleware.RequireRoles(string(models.RoleAdmin))
	staff := middleware.RequireRoles(string(models.RoleAdmin), string(models.RoleSecretary))
	teachers := middleware.RequireRoles(string(models.RoleAdmin), string(models.RoleSecretary), string(models.RoleTeacher))
	student := middleware.RequireRoles(string(models.RoleStudent))
	anyUser := middleware.RequireRoles()

	// Auth
	router.HandleFunc("/api/auth/register", userHandler.Register).Methods("POST")
	router.HandleFunc("/api/auth/login", userHandler.Login).Methods("POST")
	router.Handle("/api/users", admin(http.HandlerFunc(userHandler.GetUsers))).Methods("GET")
	router.Handle("/api/users/me", anyUser(http.HandlerFunc(userHandler.GetMe))).Methods("GET")

	// Catalog
	router.Handle("/api/courses", staff(http.HandlerFunc(courseHandler.CreateCourse))).Methods("POST")
	router.Handle("/api/courses", anyUser(http.HandlerFunc(courseHandler.GetCourses))).Methods("GET")
	router.Handle("/api/courses", staff(http.HandlerFunc(courseHandler.UpdateCourse))).Methods("PUT")

	router.Handle("/api/sections", staff(http.HandlerFunc(sectionHandler.CreateSection))).Methods("POST")
	router.Handle("/api/sections", anyUser(http.HandlerFunc(sectionHandler.GetSections))).Methods("GET")

	router.Handle("/api/rooms", staff(http.HandlerFunc(roomHandler.CreateRoom))).Methods("POST")
	router.Handle("/api/rooms", anyUser(http.HandlerFunc(roomHandler.GetRooms))).Methods("GET")
	router.Handle("/api/rooms/reservations", teachers(http.HandlerFunc(roomHandler.CreateReservation))).Methods("POST")
	router.Handle("/api/rooms/reservations", anyUser(http.HandlerFunc(roomHandler.GetReservations))).Methods("GET")

	// Semesters and the lab enrollment lifecycle
	router.Handle("/api/semesters", staff(http.HandlerFunc(semesterHandler.CreateSemester))).Methods("POST")
	router.Handle("/api/semesters", anyUser(http.HandlerFunc(semesterHandler.GetSemesters))).Methods("GET")
	router.Handle("/api/semesters/{id}/labs/open", staff(http.HandlerFunc(semesterHandler.OpenLabEnrollment))).Methods("POST")
	router.Handle("/api/semesters/{id}/labs/close", staff(http.HandlerFunc(semesterHandler.CloseLabEnrollment))).Methods("POST")

	// Labs
	router.Handle("/api/labs/groups", staff(http.HandlerFunc(sectionHandler.CreateLabGroup))).Methods("POST")
	router.Handle("/api/labs/groups", anyUser(http.HandlerFunc(sectionHandler.GetLabGroups))).Methods("GET")
	router.Handle("/api/labs/preferences", student(http.HandlerFunc(labHandler.SubmitPreferences))).Methods("POST")
	router.Handle("/api/labs/preferences", student(http.HandlerFunc(labHandler.GetMyPreferences))).Methods("GET")
	router.Handle("/api/labs/preprocess", staff(http.HandlerFunc(labHandler.Preprocess))).Methods("POST")
	router.Handle("/api/labs/assign", staff(http.HandlerFunc(labHandler.ProcessAssignments))).Methods("POST")

	// Enrollment packages
	router.Handle("/api/enrollments/packages", staff(http.HandlerFunc(enrollmentHandler.GetPackages))).Methods("GET")
	router.Handle("/api/enrollments/bulk", staff(http.HandlerFunc(enrollmentHandler.BulkEnroll))).Methods("POST")

	// Student views
	router.Handle("/api/students/me/schedule", student(http.HandlerFunc(studentHandler.GetMySchedule))).Methods("GET")

	// Grades
	router.Handle("/api/grades/partial", teachers(http.HandlerFunc(gradeHandler.SetPartialGrades))).Methods("POST")
	router.Handle("/api/grades/weights", teachers(http.HandlerFunc(gradeHandler.SetWeights))).Methods("POST")
	router.Handle("/api/grades/substitutive", teachers(http.HandlerFunc(gradeHandler.SetSubstitutive))).Methods("POST")
	router.Handle("/api/grades", teachers(http.HandlerFunc(gradeHandler.GetSectionGrades))).Methods("GET")

	// Attendance
	router.Handle("/api/attendance/sessions", teachers(http.HandlerFunc(attendanceHandler.CreateSession))).Methods("POST")
	router.Handle("/api/attendance/sessions", teachers(http.HandlerFunc(attendanceHandler.GetSessions))).Methods("GET")

	return router
}
