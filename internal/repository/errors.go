package repository

import "errors"

// Ошибки хранилища, общие для pgx и in-memory реализаций
var (
	ErrNotFound     = errors.New("not found")
	ErrSlotTaken    = errors.New("slot is already booked")
	ErrSlotOccupied = errors.New("slot has active bookings")
)
