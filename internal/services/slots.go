package services

import (
	"fmt"
	"time"
)

type SlotOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DeliveryTimes are the two fixed cash-on-delivery drop-off slots.
var DeliveryTimes = []SlotOption{
	{Value: "07:00", Label: "07:00 - Pagi"},
	{Value: "16:30", Label: "16:30 - Sore"},
}

const deliveryDays = 6

var (
	hari  = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}
	bulan = [...]string{"Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli",
		"Agustus", "September", "Oktober", "November", "Desember"}
)

// AvailableDates lists today and the next five days in now's location.
func AvailableDates(now time.Time) []SlotOption {
	y, m, d := now.Date()
	out := make([]SlotOption, 0, deliveryDays)
	for i := 0; i < deliveryDays; i++ {
		day := time.Date(y, m, d+i, 12, 0, 0, 0, now.Location())
		label := fmt.Sprintf("%s, %d %s", hari[day.Weekday()], day.Day(), bulan[day.Month()-1])
		switch i {
		case 0:
			label = "Hari ini"
		case 1:
			label = "Besok"
		}
		out = append(out, SlotOption{Value: day.Format("2006-01-02"), Label: label})
	}
	return out
}

func offered(opts []SlotOption, v string) bool {
	for _, o := range opts {
		if o.Value == v {
			return true
		}
	}
	return false
}
