package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"accountive-server/handlers"
	"accountive-server/middleware"
	"accountive-server/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	// Shared store and push channel
	store := services.NewStore()
	messenger := services.NewMessenger()

	// Services
	dispatchService := services.NewDispatchService(messenger)
	userService := services.NewUserService(store, jwtSecret)
	friendService := services.NewFriendService(store, userService, dispatchService)
	groupService := services.NewGroupService(store)
	activityService := services.NewActivityService(store, userService, friendService, groupService, dispatchService)

	// Scheduled jobs
	reminderJob := services.NewReminderJob(dispatchService, parseHours(getenv("REMINDER_HOURS", "11,17")))
	resetJob := services.NewResetJob(store, parseHour(getenv("RESET_HOUR", "22")))
	go reminderJob.Run(context.Background())
	go resetJob.Run(context.Background())

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, friendService)
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendService)
	groupHandler := handlers.NewGroupHandler(groupService)
	activityHandler := handlers.NewActivityHandler(activityService)
	dispatchHandler := handlers.NewDispatchHandler(dispatchService)

	r := mux.NewRouter()
	r.Use(middleware.ErrorMiddleware())

	// CORS middleware
	allowedOrigins := []string{"http://localhost:3000", "http://localhost:5173"}
	r.Use(middleware.CORSMiddleware(allowedOrigins))

	// Auth routes
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.RegisterUser).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/login", authHandler.LoginUser).Methods("POST", "OPTIONS")

	// User routes
	userRouter := r.PathPrefix("/user").Subrouter()
	userRouter.Use(middleware.JWTMiddleware(jwtSecret))
	userRouter.HandleFunc("/profile", userHandler.GetProfile).Methods("GET", "OPTIONS")
	userRouter.HandleFunc("/fcm-token", userHandler.UpdateFcmToken).Methods("PUT", "OPTIONS")
	userRouter.HandleFunc("/subscriptions", userHandler.GetSubscriptions).Methods("GET", "OPTIONS")
	userRouter.HandleFunc("/counts", userHandler.UpdateCounts).Methods("PUT", "OPTIONS")
	userRouter.HandleFunc("/instructions", userHandler.GetHasShownInstructions).Methods("GET", "OPTIONS")
	userRouter.HandleFunc("/instructions", userHandler.SetHasShownInstructions).Methods("PUT", "OPTIONS")
	userRouter.HandleFunc("/delete", authHandler.DeleteAccount).Methods("DELETE", "OPTIONS")

	// Friend routes
	friendRouter := r.PathPrefix("/friends").Subrouter()
	friendRouter.Use(middleware.JWTMiddleware(jwtSecret))
	friendRouter.HandleFunc("", friendHandler.GetFriends).Methods("GET", "OPTIONS")
	friendRouter.HandleFunc("/requests", friendHandler.GetFriendRequests).Methods("GET", "OPTIONS")
	friendRouter.HandleFunc("/own-requests", friendHandler.GetOwnRequests).Methods("GET", "OPTIONS")
	friendRouter.HandleFunc("/send-request", friendHandler.SendFriendRequest).Methods("POST", "OPTIONS")
	friendRouter.HandleFunc("/accept-request", friendHandler.AcceptFriendRequest).Methods("POST", "OPTIONS")
	friendRouter.HandleFunc("/decline-request", friendHandler.DeclineFriendRequest).Methods("POST", "OPTIONS")
	friendRouter.HandleFunc("/cancel-request", friendHandler.CancelOwnRequest).Methods("POST", "OPTIONS")
	friendRouter.HandleFunc("/remove", friendHandler.RemoveFriend).Methods("POST", "OPTIONS")
	friendRouter.HandleFunc("/search", friendHandler.SearchUsers).Methods("GET", "OPTIONS")

	// Friend group routes
	groupRouter := r.PathPrefix("/groups").Subrouter()
	groupRouter.Use(middleware.JWTMiddleware(jwtSecret))
	groupRouter.HandleFunc("", groupHandler.GetFriendGroups).Methods("GET", "OPTIONS")
	groupRouter.HandleFunc("", groupHandler.CreateFriendGroup).Methods("POST", "OPTIONS")
	groupRouter.HandleFunc("", groupHandler.UpdateFriendGroup).Methods("PUT", "OPTIONS")
	groupRouter.HandleFunc("", groupHandler.DeleteFriendGroup).Methods("DELETE", "OPTIONS")

	// Activity routes
	activityRouter := r.PathPrefix("/activities").Subrouter()
	activityRouter.Use(middleware.JWTMiddleware(jwtSecret))
	activityRouter.HandleFunc("", activityHandler.GetActivities).Methods("GET", "OPTIONS")
	activityRouter.HandleFunc("", activityHandler.AddActivity).Methods("POST", "OPTIONS")
	activityRouter.HandleFunc("", activityHandler.UpdateActivity).Methods("PUT", "OPTIONS")
	activityRouter.HandleFunc("", activityHandler.DeleteActivity).Methods("DELETE", "OPTIONS")
	activityRouter.HandleFunc("/done", activityHandler.MarkActivityDone).Methods("POST", "OPTIONS")
	activityRouter.HandleFunc("/done-count", activityHandler.GetDoneCount).Methods("GET", "OPTIONS")

	// Dispatch function routes
	fnRouter := r.PathPrefix("/fn").Subrouter()
	fnRouter.Use(middleware.JWTMiddleware(jwtSecret))
	fnRouter.HandleFunc("/notifyIndividual", dispatchHandler.NotifyIndividual).Methods("POST", "OPTIONS")
	fnRouter.HandleFunc("/notifyFriends", dispatchHandler.NotifyFriends).Methods("POST", "OPTIONS")
	fnRouter.HandleFunc("/subscribeToDays", dispatchHandler.SubscribeToDays).Methods("POST", "OPTIONS")
	fnRouter.HandleFunc("/unsubscribeFromDays", dispatchHandler.UnsubscribeFromDays).Methods("POST", "OPTIONS")
	fnRouter.HandleFunc("/deleteUserActivities", dispatchHandler.DeleteUserActivities).Methods("POST", "OPTIONS")

	addr := getenv("HTTP_ADDR", ":8080")
	log.Println("Server starting on " + addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseHours(value string) []int {
	var hours []int
	for _, part := range strings.Split(value, ",") {
		hours = append(hours, parseHour(strings.TrimSpace(part)))
	}
	return hours
}

func parseHour(value string) int {
	hour, err := strconv.Atoi(value)
	if err != nil || hour < 0 || hour > 23 {
		log.Fatalf("Invalid hour value %q", value)
	}
	return hour
}
