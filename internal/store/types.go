package store

// OccupancySummary is the aggregate view over all rooms.
type OccupancySummary struct {
	TotalRooms       int64 `json:"totalRooms"`
	Available        int64 `json:"available"`
	Occupied         int64 `json:"occupied"`
	UnderMaintenance int64 `json:"underMaintenance"`
	TotalCapacity    int64 `json:"totalCapacity"`
	TotalOccupied    int64 `json:"totalOccupied"`
	AvailableSlots   int64 `json:"availableSlots"`
}
