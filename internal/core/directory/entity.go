package directory

import "time"

// Department は部署エンティティです。
type Department struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role は職位エンティティです。Level は序列で、値が大きいほど上位です。
type Role struct {
	ID        int64
	Name      string
	Level     int
	CreatedAt time.Time
	UpdatedAt time.Time
}
