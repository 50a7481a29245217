// Package handler exposes HTTP handlers for both authenticated and public
// endpoints. This file defines the public room browsing API. These routes
// let guests inspect the rooms before booking; no authentication is applied
// and responses contain only safe fields.
package handler

import (
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/hotelbrasileiro/hotel-reservation/internal/repository"
)

// RoomHandler serves the read-only room catalogue.
type RoomHandler struct {
    Rooms *repository.RoomRepo
}

// PublicRoom is a room as exposed via the public API.
type PublicRoom struct {
    ID           uint64 `json:"id"`
    Name         string `json:"nome"`
    Description  string `json:"descricao,omitempty"`
    Capacity     uint32 `json:"capacidade"`
    NightlyPrice int64  `json:"preco_noite"`
}

// GetRooms returns all bookable rooms. Response JSON contains an "items"
// array of PublicRoom.
func (h *RoomHandler) GetRooms(c echo.Context) error {
    rooms, err := h.Rooms.ListActive(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    out := make([]PublicRoom, 0, len(rooms))
    for _, r := range rooms {
        out = append(out, PublicRoom{
            ID:           r.ID,
            Name:         r.Name,
            Description:  r.Description,
            Capacity:     r.Capacity,
            NightlyPrice: r.NightlyPrice,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetRoom returns a single room by id.
func (h *RoomHandler) GetRoom(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    room, err := h.Rooms.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrRoomNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, PublicRoom{
        ID:           room.ID,
        Name:         room.Name,
        Description:  room.Description,
        Capacity:     room.Capacity,
        NightlyPrice: room.NightlyPrice,
    })
}
