package Notifications

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"Atlas/Models"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

var firebaseClient *messaging.Client
var ctx = context.Background()

// InitFirebase sets up the Cloud Messaging client. Call once at startup;
// notifications are skipped silently when no credentials are configured.
func InitFirebase() error {
	credentials := os.Getenv("FIREBASE_CREDENTIALS")
	if credentials == "" {
		log.Println("FIREBASE_CREDENTIALS not set, push notifications disabled")
		return nil
	}
	opt := option.WithCredentialsFile(credentials)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return fmt.Errorf("error initializing Firebase app: %v", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return fmt.Errorf("error getting Messaging client: %v", err)
	}

	firebaseClient = client
	log.Println("Firebase initialized successfully")
	return nil
}

// NotifyInspectionFailure alerts supervisors and admins when an inspection
// completes with a failed overall result.
func NotifyInspectionFailure(inspection *Models.Inspection) {
	if firebaseClient == nil {
		return
	}

	var equipment Models.Equipment
	label := strconv.Itoa(int(inspection.EquipmentID))
	if err := Models.DB.First(&equipment, inspection.EquipmentID).Error; err == nil {
		label = equipment.SerialNumber
	}

	tokens, err := supervisorTokens()
	if err != nil {
		log.Printf("Failed to load notification tokens: %v", err)
		return
	}

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Data: map[string]string{
				"inspection_id": strconv.Itoa(int(inspection.ID)),
				"equipment_id":  strconv.Itoa(int(inspection.EquipmentID)),
				"serial_number": label,
				"type":          string(inspection.Type),
			},
			Notification: &messaging.Notification{
				Title: "Inspection Failed",
				Body:  fmt.Sprintf("Equipment %s failed its %s inspection", label, inspection.Type),
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Color: "#C62828",
					Sound: "default",
				},
				Priority: "high",
			},
		}

		if _, err := firebaseClient.Send(ctx, message); err != nil {
			log.Printf("Error sending inspection failure notification: %v", err)
		}
	}
}

// NotifyOverdueInspections pushes one backlog summary to supervisors and
// admins. Called by the hourly sweep; a zero count sends nothing.
func NotifyOverdueInspections(count int64) {
	if firebaseClient == nil || count == 0 {
		return
	}

	tokens, err := supervisorTokens()
	if err != nil {
		log.Printf("Failed to load notification tokens: %v", err)
		return
	}

	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Data: map[string]string{
				"overdue_count": strconv.FormatInt(count, 10),
			},
			Notification: &messaging.Notification{
				Title: "Overdue Inspections",
				Body:  fmt.Sprintf("%d inspections are past their scheduled date", count),
			},
			Android: &messaging.AndroidConfig{
				Notification: &messaging.AndroidNotification{
					Color: "#EF6C00",
					Sound: "default",
				},
				Priority: "high",
			},
		}

		if _, err := firebaseClient.Send(ctx, message); err != nil {
			log.Printf("Error sending overdue summary notification: %v", err)
		}
	}
}

// supervisorTokens returns FCM tokens registered by supervisor or admin
// accounts.
func supervisorTokens() ([]string, error) {
	var tokens []string
	err := Models.DB.Model(&Models.FCMToken{}).
		Joins("JOIN users ON users.id = fcm_tokens.user_id AND users.deleted_at IS NULL").
		Where("users.permission >= ?", Models.PermissionSupervisor).
		Pluck("fcm_tokens.value", &tokens).Error
	return tokens, err
}
