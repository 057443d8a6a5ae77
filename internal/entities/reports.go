package entities

import "time"

// ReportPeriod echoes back the requested reporting window.
type ReportPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type MonthlyAmount struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

type VehicleRevenue struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	LicensePlate string  `json:"license_plate"`
	RentalCount  int     `json:"rental_count"`
	TotalRevenue float64 `json:"total_revenue"`
}

type MaintenanceCostByType struct {
	Type      string  `json:"type"`
	TotalCost float64 `json:"total_cost"`
	Count     int     `json:"count"`
}

type MaintenanceCostByVehicle struct {
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	LicensePlate string  `json:"license_plate"`
	TotalCost    float64 `json:"total_cost"`
	Count        int     `json:"count"`
}

type RevenueByVehicleMake struct {
	Make    string  `json:"make"`
	Revenue float64 `json:"revenue"`
}

type RevenueReport struct {
	Summary struct {
		TotalRevenue       float64      `json:"total_revenue"`
		TotalRentals       int          `json:"total_rentals"`
		AverageRentalValue float64      `json:"average_rental_value"`
		Period             ReportPeriod `json:"period"`
	} `json:"summary"`
	MonthlyRevenue []MonthlyAmount        `json:"monthly_revenue"`
	RevenueByMake  []RevenueByVehicleMake `json:"revenue_by_make"`
	Rentals        []RentalDetail         `json:"rentals"`
}

type MaintenanceCostReport struct {
	Summary struct {
		TotalCosts        float64      `json:"total_costs"`
		TotalMaintenances int          `json:"total_maintenances"`
		AverageCost       float64      `json:"average_cost"`
		Period            ReportPeriod `json:"period"`
	} `json:"summary"`
	CostsByType    []MaintenanceCostByType    `json:"costs_by_type"`
	CostsByVehicle []MaintenanceCostByVehicle `json:"costs_by_vehicle"`
	MonthlyCosts   []MonthlyAmount            `json:"monthly_costs"`
	Maintenances   []MaintenanceDetail        `json:"maintenances"`
}

type FleetStatusCounts struct {
	TotalVehicles int `json:"total_vehicles"`
	Available     int `json:"available"`
	Rented        int `json:"rented"`
	Maintenance   int `json:"maintenance"`
	Unavailable   int `json:"unavailable"`
}

type AvailabilityByMake struct {
	Make        string `json:"make"`
	Total       int    `json:"total"`
	Available   int    `json:"available"`
	Rented      int    `json:"rented"`
	Maintenance int    `json:"maintenance"`
	Unavailable int    `json:"unavailable"`
}

type FleetAvailabilityReport struct {
	Summary struct {
		FleetStatusCounts
		UtilizationRate float64 `json:"utilization_rate"`
	} `json:"summary"`
	AvailabilityByMake []AvailabilityByMake `json:"availability_by_make"`
	Vehicles           []VehicleDetail      `json:"vehicles"`
}

type DashboardKPIs struct {
	TotalVehicles       int     `json:"total_vehicles"`
	AvailableVehicles   int     `json:"available_vehicles"`
	RentedVehicles      int     `json:"rented_vehicles"`
	MaintenanceVehicles int     `json:"maintenance_vehicles"`
	PendingMaintenances int     `json:"pending_maintenances"`
	ActiveAlerts        int     `json:"active_alerts"`
	MonthlyRevenue      float64 `json:"monthly_revenue"`
	ActiveRentals       int     `json:"active_rentals"`
	NewCustomers        int     `json:"new_customers"`
	UtilizationRate     float64 `json:"utilization_rate"`
}

type DashboardResponse struct {
	KPIs   DashboardKPIs `json:"kpis"`
	Charts struct {
		RevenueTrends []MonthlyAmount  `json:"revenue_trends"`
		TopVehicles   []VehicleRevenue `json:"top_vehicles"`
	} `json:"charts"`
	Alerts struct {
		UpcomingMaintenances []MaintenanceDetail `json:"upcoming_maintenances"`
		RecentRentals        []RentalDetail      `json:"recent_rentals"`
	} `json:"alerts"`
}
