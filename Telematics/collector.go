package Telematics

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"Atlas/Models"

	"github.com/gocolly/colly"
)

// Reading is one scraped hour-meter and fuel snapshot, keyed by plate number
// until it is matched against the fleet registry.
type Reading struct {
	PlateNo        string
	OperatingHours float64
	FuelLevel      float64
	ReadAt         time.Time
}

func providerURL() string {
	return os.Getenv("TELEMATICS_URL")
}

// NewCollector builds an authenticated collector against the telematics
// portal. The portal uses a plain form login and cookie session.
func NewCollector() (*colly.Collector, error) {
	base := providerURL()
	if base == "" {
		return nil, fmt.Errorf("TELEMATICS_URL not configured")
	}

	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	collector.WithTransport(&http.Transport{
		TLSClientConfig:   &tls.Config{InsecureSkipVerify: true},
		ForceAttemptHTTP2: false,
	})

	data := url.Values{
		"username": {os.Getenv("TELEMATICS_USER")},
		"password": {os.Getenv("TELEMATICS_PASSWORD")},
	}
	err := collector.Request("POST", base+"/login", strings.NewReader(data.Encode()), nil,
		http.Header{"Content-Type": []string{"application/x-www-form-urlencoded"}})
	if err != nil {
		return nil, fmt.Errorf("telematics login failed: %w", err)
	}

	return collector, nil
}

// FetchReadings scrapes the current hour-meter table. Rows with unparseable
// numbers are skipped.
func FetchReadings(collector *colly.Collector) ([]Reading, error) {
	var readings []Reading
	now := time.Now()

	collector.OnHTML("table#fleet-readings tbody", func(h *colly.HTMLElement) {
		h.ForEach("tr", func(_ int, tr *colly.HTMLElement) {
			var reading Reading
			valid := true
			tr.ForEach("td", func(i int, td *colly.HTMLElement) {
				text := strings.TrimSpace(td.Text)
				switch i {
				case 0:
					reading.PlateNo = text
				case 1:
					hours, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", ""), 64)
					if err != nil {
						valid = false
						return
					}
					reading.OperatingHours = hours
				case 2:
					fuel, err := strconv.ParseFloat(strings.TrimSuffix(text, "%"), 64)
					if err != nil {
						valid = false
						return
					}
					reading.FuelLevel = fuel
				case 3:
					readAt, err := time.Parse("02-01-2006 03:04:05 PM", text)
					if err != nil {
						reading.ReadAt = now
					} else {
						reading.ReadAt = readAt
					}
				}
			})
			if valid && reading.PlateNo != "" {
				if reading.ReadAt.IsZero() {
					reading.ReadAt = now
				}
				readings = append(readings, reading)
			}
		})
	})

	err := collector.Request("GET", providerURL()+"/fleet/readings", nil, nil,
		http.Header{"Content-Type": []string{"text/html; charset=utf-8"}})
	if err != nil {
		return nil, err
	}

	if len(readings) == 0 {
		return nil, fmt.Errorf("no readings returned")
	}
	return readings, nil
}

// StoreReadings matches scraped readings against the registry by plate number
// and records them. Hour meters never go backwards; stale or regressed
// readings are dropped.
func StoreReadings(readings []Reading) int {
	stored := 0
	for _, reading := range readings {
		var equipment Models.Equipment
		if err := Models.DB.Where("plate_number = ?", reading.PlateNo).First(&equipment).Error; err != nil {
			continue
		}
		if reading.OperatingHours < equipment.OperatingHours {
			log.Printf("Skipping regressed hour reading for %s: %.1f < %.1f",
				reading.PlateNo, reading.OperatingHours, equipment.OperatingHours)
			continue
		}
		if equipment.LastReadingAt != nil && !reading.ReadAt.After(*equipment.LastReadingAt) {
			continue
		}

		record := Models.HourReading{
			EquipmentID:    equipment.ID,
			OperatingHours: reading.OperatingHours,
			FuelLevel:      reading.FuelLevel,
			Source:         "telematics",
			ReadAt:         reading.ReadAt,
		}
		if err := Models.DB.Create(&record).Error; err != nil {
			log.Printf("Failed to store hour reading for %s: %v", reading.PlateNo, err)
			continue
		}

		readAt := reading.ReadAt
		Models.DB.Model(&equipment).Updates(map[string]interface{}{
			"operating_hours": reading.OperatingHours,
			"fuel_level":      reading.FuelLevel,
			"last_reading_at": &readAt,
		})
		stored++
	}
	return stored
}

// Sync runs one login-fetch-store cycle.
func Sync() error {
	collector, err := NewCollector()
	if err != nil {
		return err
	}
	readings, err := FetchReadings(collector)
	if err != nil {
		return err
	}
	stored := StoreReadings(readings)
	log.Printf("Telematics sync stored %d of %d readings", stored, len(readings))
	return nil
}

// Run polls the provider on the given interval until the process exits.
func Run(interval time.Duration) {
	if providerURL() == "" {
		log.Println("TELEMATICS_URL not set, telematics sync disabled")
		return
	}
	for {
		if err := Sync(); err != nil {
			log.Printf("Telematics sync failed: %v", err)
		}
		time.Sleep(interval)
	}
}
