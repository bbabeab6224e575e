package productcontroller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/response"
	"github.com/rs/zerolog"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

var exportHeaders = []string{
	"ID", "Name", "Description", "Price", "Stock",
	"Available", "Category", "Seller", "Image", "CreatedAt",
}

// GET /products/export
func ExportProductsToExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var products []models.Product
		err := db.WithContext(c.Request.Context()).
			Preload("Category").Preload("User").
			Order("id").
			Find(&products).Error
		if err != nil {
			response.Error(c, apperr.Internal("export products", err))
			return
		}

		file, err := productWorkbook(products)
		if err != nil {
			response.Error(c, apperr.Internal("build workbook", err))
			return
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Header("Content-Transfer-Encoding", "binary")
		c.Header("Expires", "0")
		c.Status(http.StatusOK)

		// Headers are already sent, so a failure here can only be logged.
		if err := file.Write(c.Writer); err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("write workbook")
		}
	}
}

func productWorkbook(products []models.Product) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return nil, err
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetString(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetInt(int(p.ID))
		row.AddCell().SetString(p.Name)
		row.AddCell().SetString(p.Description)
		row.AddCell().SetString(p.Price.StringFixed(2))
		row.AddCell().SetInt(p.Stock)
		row.AddCell().SetBool(p.IsAvailable)
		var category, seller string
		if p.Category != nil {
			category = p.Category.Name
		}
		if p.User != nil {
			seller = p.User.Email
		}
		row.AddCell().SetString(category)
		row.AddCell().SetString(seller)
		row.AddCell().SetString(p.Img)
		row.AddCell().SetString(p.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return file, nil
}
