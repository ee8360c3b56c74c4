package controllers

import (
	"log"

	"github.com/tgaisser/ocb/config"
	"github.com/tgaisser/ocb/middleware"
	"github.com/tgaisser/ocb/utils"

	"github.com/gofiber/fiber/v2"
)

var vimeo *utils.VimeoClient

func vimeoClient() *utils.VimeoClient {
	if vimeo == nil {
		vimeo = utils.NewVimeoClient(config.AppConfig.VimeoAccessToken)
	}
	return vimeo
}

// GetVideoResolutions returns per-resolution playback parameters for one video.
func GetVideoResolutions(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(string); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	vimeoId := c.Params("vimeoId")
	if vimeoId == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Video ID is required!", nil)
	}

	renditions, err := vimeoClient().GetResolutions(vimeoId)
	if err != nil {
		log.Printf("Failed to fetch renditions for video %s: %v", vimeoId, err)
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Video not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video resolutions fetched successfully!", renditions)
}

// GetAltResolutions resolves playback parameters for a batch of videos,
// silently omitting ones that fail.
func GetAltResolutions(c *fiber.Ctx) error {
	if _, ok := c.Locals("userId").(string); !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var reqData struct {
		VideoIds []string `json:"videoIds"`
	}
	if err := c.BodyParser(&reqData); err != nil || len(reqData.VideoIds) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "A list of video IDs is required!", nil)
	}

	out := vimeoClient().GetResolutionsBatch(reqData.VideoIds)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video resolutions fetched successfully!", out)
}
